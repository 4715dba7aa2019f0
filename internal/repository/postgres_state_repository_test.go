package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meeting-planner-api/internal/availability"
)

func newStateRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestPostgresStateRepositoryGet(t *testing.T) {
	db, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	repo := NewPostgresStateRepository(db)
	rows := sqlmock.NewRows([]string{"meeting_id", "week_start", "state", "updated_at"}).
		AddRow("team", int64(1741564800000), []byte(`{"0-10":[0,2],"3-15":[1]}`), time.Now())
	mock.ExpectQuery("SELECT meeting_id, week_start, state, updated_at FROM meeting_week_states").
		WithArgs("team", int64(1741564800000)).
		WillReturnRows(rows)

	state, err := repo.Get(context.Background(), "team", 1741564800000)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{"0-10": {0, 2}, "3-15": {1}}, state)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	repo := NewPostgresStateRepository(db)
	mock.ExpectQuery("SELECT meeting_id").
		WithArgs("team", int64(5)).
		WillReturnError(sql.ErrNoRows)

	state, err := repo.Get(context.Background(), "team", 5)
	require.NoError(t, err)
	assert.Equal(t, availability.Serialized{}, state)
}

func TestPostgresStateRepositoryGetFailure(t *testing.T) {
	db, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	repo := NewPostgresStateRepository(db)
	mock.ExpectQuery("SELECT meeting_id").
		WithArgs("team", int64(5)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Get(context.Background(), "team", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get week state")
}

func TestPostgresStateRepositoryPut(t *testing.T) {
	db, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	repo := NewPostgresStateRepository(db)
	mock.ExpectExec("INSERT INTO meeting_week_states").
		WithArgs("team", int64(1741564800000), []byte(`{"0-10":[1]}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Put(context.Background(), "team", 1741564800000, availability.Serialized{"0-10": {1}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStateRepositoryPutNil(t *testing.T) {
	db, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	repo := NewPostgresStateRepository(db)
	mock.ExpectExec("INSERT INTO meeting_week_states").
		WithArgs("team", int64(7), []byte(`{}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Put(context.Background(), "team", 7, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
