package files

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radif/blobfiles/internal/middleware"
	"github.com/radif/blobfiles/internal/response"
	"github.com/radif/blobfiles/internal/storage"
)

// Handler holds HTTP handlers for the files endpoints.
type Handler struct {
	svc            *Service
	log            *slog.Logger
	maxUploadBytes int64
}

// NewHandler creates a new files Handler.
func NewHandler(svc *Service, log *slog.Logger, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, log: log, maxUploadBytes: maxUploadBytes}
}

type deleteData struct {
	Name      string `json:"name"      example:"4f1c..._logo.png"`
	RequestID string `json:"requestId" example:"b6f0c0e2-701e-0040-6f2b-0bd4e6000000"`
}

type metadataData struct {
	File
	URL string `json:"url"`
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the raw request body. The stored name is the given name prefixed with a random ID.
//	@Tags			files
//	@Accept			octet-stream
//	@Produce		json
//	@Security		BearerAuth
//	@Param			filename	path		string	true	"File name"
//	@Success		201			{object}	response.Envelope{data=StoredFile}
//	@Failure		400			{object}	response.Envelope
//	@Failure		401			{object}	response.Envelope
//	@Failure		413			{object}	response.Envelope
//	@Failure		502			{object}	response.Envelope
//	@Router			/files/{filename} [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	appID, ok := middleware.AppIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	name, ok := pathParam(w, r, "filename")
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "file exceeds "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes")
			return
		}
		response.BadRequest(w, "could not read request body")
		return
	}

	f, err := h.svc.Upload(r.Context(), appID, name, r.Header.Get("Content-Type"), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, f.URL, f)
}

// Get godoc
//
//	@Summary		Download a file
//	@Description	Proxies the file content from blob storage.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			appId		path		string	true	"Application ID"
//	@Param			filename	path		string	true	"Stored file name"
//	@Success		200			{file}		binary
//	@Failure		404			{object}	response.Envelope
//	@Failure		502			{object}	response.Envelope
//	@Router			/files/{appId}/{filename} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	appID, ok := pathParam(w, r, "appId")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "filename")
	if !ok {
		return
	}

	data, contentType, err := h.svc.Read(r.Context(), appID, name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			filename	path		string	true	"Stored file name"
//	@Success		200			{object}	response.Envelope{data=deleteData}
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		502			{object}	response.Envelope
//	@Router			/files/{filename} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	appID, ok := middleware.AppIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	name, ok := pathParam(w, r, "filename")
	if !ok {
		return
	}

	res, err := h.svc.Delete(r.Context(), appID, name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, deleteData{Name: name, RequestID: res.RequestID})
}

// Metadata godoc
//
//	@Summary		Get file metadata
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			filename	path		string	true	"Stored file name"
//	@Success		200			{object}	response.Envelope{data=metadataData}
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/metadata/{filename} [get]
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "filename")
	if !ok {
		return
	}

	f, err := h.svc.Metadata(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, metadataData{File: *f, URL: h.svc.Location(f.Name)})
}

// pathParam returns the decoded URL parameter key. chi routes on the already
// decoded path unless the request carries escapes Go would not produce itself
// (RawPath set), in which case the segment is still encoded.
func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath != "" {
		var err error
		if v, err = url.PathUnescape(v); err != nil {
			response.BadRequest(w, "invalid "+key)
			return "", false
		}
	}
	if v == "" {
		response.BadRequest(w, "invalid "+key)
		return "", false
	}
	return v, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidName):
		response.BadRequest(w, err.Error())
	case IsNotFound(err):
		response.NotFound(w, "file not found")
	case errors.Is(err, storage.ErrWrite), errors.Is(err, storage.ErrRead), errors.Is(err, storage.ErrDelete):
		h.log.ErrorContext(r.Context(), "storage request failed", slog.String("error", err.Error()))
		response.BadGateway(w, "storage backend error")
	default:
		h.log.ErrorContext(r.Context(), "files request failed", slog.String("error", err.Error()))
		response.InternalError(w)
	}
}
