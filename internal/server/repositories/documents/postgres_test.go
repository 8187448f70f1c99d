package documents

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var upsertRe = regexp.MustCompile(`INSERT INTO documents .* ON CONFLICT \(collection, id\) .* WHERE documents\.user_id = EXCLUDED\.user_id;`)

func ticket() documents.Document {
	return documents.Document{ID: "t1", Fields: map[string]any{
		"userId":       "u1",
		"lastModified": int64(42),
		"total":        "9.90",
	}}
}

func TestPut_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertRe.String()).
		WithArgs("tickets", "t1", "u1", int64(42), []byte(`{"lastModified":42,"total":"9.90","userId":"u1"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Put(context.Background(), "tickets", ticket()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_OwnedByAnotherUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertRe.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Put(context.Background(), "tickets", ticket())
	require.ErrorIs(t, err, common.ErrOwnershipConflict)
}

func TestPut_ExecError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertRe.String()).WillReturnError(errors.New("conn reset"))

	err := repo.Put(context.Background(), "tickets", ticket())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestPut_UnexpectedRowsAffected(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertRe.String()).WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.Put(context.Background(), "tickets", ticket())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected rows affected")
}

func TestPut_RequiresOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	err := repo.Put(context.Background(), "tickets", documents.Document{ID: "t1", Fields: map[string]any{}})
	require.ErrorIs(t, err, common.ErrInvalidRecord)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_DecodesRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "fields"}).
		AddRow("t1", []byte(`{"userId":"u1","lastModified":1735689600123,"total":"9.90","ratio":0.5}`)).
		AddRow("t2", []byte(`{"userId":"u1","lastModified":1735689600999}`))

	mock.ExpectQuery(`SELECT id, fields FROM documents\s+WHERE collection = \$1 AND fields @> \$2::jsonb AND last_modified > \$3`).
		WithArgs("tickets", []byte(`{"userId":"u1"}`), int64(100)).
		WillReturnRows(rows)

	got, err := repo.Query(context.Background(), documents.Query{
		Collection:    "tickets",
		Equals:        map[string]any{"userId": "u1"},
		ModifiedAfter: 100,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, int64(1735689600123), got[0].Fields["lastModified"])
	assert.Equal(t, 0.5, got[0].Fields["ratio"])
	assert.Equal(t, "9.90", got[0].String("total", ""))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_EmptyFilterMatchesAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, fields FROM documents\s+WHERE collection = \$1 AND fields @> \$2::jsonb\s+ORDER BY`).
		WithArgs("events", []byte(`{}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fields"}))

	got, err := repo.Query(context.Background(), documents.Query{Collection: "events"})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_ZeroBoundReturnsUnstampedDocuments(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "fields"}).
		AddRow("t1", []byte(`{"id":"t1","userId":"u1"}`)).
		AddRow("t2", []byte(`{"id":"t2","userId":"u1","lastModified":0}`))

	mock.ExpectQuery(`SELECT id, fields FROM documents\s+WHERE collection = \$1 AND fields @> \$2::jsonb\s+ORDER BY last_modified, id`).
		WithArgs("tickets", []byte(`{"userId":"u1"}`)).
		WillReturnRows(rows)

	got, err := repo.Query(context.Background(), documents.Query{
		Collection: "tickets",
		Equals:     map[string]any{"userId": "u1"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, fields FROM documents`).WillReturnError(errors.New("boom"))

	_, err := repo.Query(context.Background(), documents.Query{Collection: "events"})
	require.Error(t, err)
}

func TestQuery_BadJSON(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, fields FROM documents`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fields"}).AddRow("x", []byte(`{oops`)))

	_, err := repo.Query(context.Background(), documents.Query{Collection: "events"})
	require.Error(t, err)
}
