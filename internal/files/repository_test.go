package files

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

var fileColumns = []string{"id", "name", "application_id", "size", "content_type", "request_id", "created_at"}

func TestRepository_Create(t *testing.T) {
	repo, mock := setupRepo(t)
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO files`).
		WithArgs("abc_a.txt", "app1", int64(2), "text/plain", "req-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("id-1", created))

	f := &File{Name: "abc_a.txt", ApplicationID: "app1", Size: 2, ContentType: "text/plain", RequestID: "req-1"}
	require.NoError(t, repo.Create(context.Background(), f))
	assert.Equal(t, "id-1", f.ID)
	assert.Equal(t, created, f.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateError(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`INSERT INTO files`).
		WithArgs("a", "app1", int64(0), "", "").
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), &File{Name: "a", ApplicationID: "app1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert file")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByName(t *testing.T) {
	repo, mock := setupRepo(t)
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, name, application_id, size, content_type, request_id, created_at`).
		WithArgs("abc_a.txt").
		WillReturnRows(pgxmock.NewRows(fileColumns).
			AddRow("id-1", "abc_a.txt", "app1", int64(2), "text/plain", "req-1", created))

	f, err := repo.GetByName(context.Background(), "abc_a.txt")
	require.NoError(t, err)
	assert.Equal(t, "app1", f.ApplicationID)
	assert.Equal(t, int64(2), f.Size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByNameNotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT id, name`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByName(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(`DELETE FROM files`).
		WithArgs("abc_a.txt").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM files`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "abc_a.txt"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
