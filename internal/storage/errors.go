package storage

import (
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// Error kinds. Match them with errors.Is.
var (
	ErrConfiguration = errors.New("storage configuration error")
	ErrWrite         = errors.New("storage write error")
	ErrDelete        = errors.New("storage delete error")
	ErrRead          = errors.New("storage read error")
)

// Error is returned by every adapter operation. Kind is one of the sentinels
// above and Err is the untouched backend error, if any.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func configurationError(msg string, err error) error {
	return &Error{Kind: ErrConfiguration, Msg: "azure storage adapter " + msg, Err: err}
}

func writeError(err error) error {
	return &Error{Kind: ErrWrite, Msg: "error creating file", Err: err}
}

func deleteError(err error) error {
	return &Error{Kind: ErrDelete, Msg: "error deleting file", Err: err}
}

func readError(err error) error {
	return &Error{Kind: ErrRead, Msg: "error getting file data", Err: err}
}

// IsNotFound reports whether err was caused by a missing blob or container.
func IsNotFound(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound)
}
