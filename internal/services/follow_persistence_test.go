package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockFollowStore(t *testing.T) (*PostgresFollowStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresFollowStore(db), mock
}

func TestPostgresFollowStore_Add(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta("INSERT INTO follows (follower_id, following_id, created_at)")

	t.Run("new edge", func(t *testing.T) {
		store, mock := newMockFollowStore(t)
		mock.ExpectExec(insert).WithArgs("u1", "u2").WillReturnResult(sqlmock.NewResult(0, 1))

		created, err := store.Add(ctx, "u1", "u2")
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("existing edge", func(t *testing.T) {
		store, mock := newMockFollowStore(t)
		mock.ExpectExec(insert).WithArgs("u1", "u2").WillReturnResult(sqlmock.NewResult(0, 0))

		created, err := store.Add(ctx, "u1", "u2")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("database error", func(t *testing.T) {
		store, mock := newMockFollowStore(t)
		mock.ExpectExec(insert).WithArgs("u1", "u2").WillReturnError(errors.New("conn refused"))

		_, err := store.Add(ctx, "u1", "u2")
		assert.EqualError(t, err, "conn refused")
	})
}

func TestPostgresFollowStore_Remove(t *testing.T) {
	ctx := context.Background()
	del := regexp.QuoteMeta("DELETE FROM follows WHERE follower_id = $1 AND following_id = $2")

	store, mock := newMockFollowStore(t)
	mock.ExpectExec(del).WithArgs("u1", "u2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(del).WithArgs("u1", "u2").WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := store.Remove(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPostgresFollowStore_Exists(t *testing.T) {
	store, mock := newMockFollowStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM follows")).
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.Exists(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgresFollowStore_Lists(t *testing.T) {
	ctx := context.Background()

	t.Run("followers", func(t *testing.T) {
		store, mock := newMockFollowStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT follower_id FROM follows WHERE following_id = $1 ORDER BY created_at ASC")).
			WithArgs("u2").
			WillReturnRows(sqlmock.NewRows([]string{"follower_id"}).AddRow("u1").AddRow("u3"))

		ids, err := store.Followers(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u3"}, ids)
	})

	t.Run("following empty", func(t *testing.T) {
		store, mock := newMockFollowStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT following_id FROM follows WHERE follower_id = $1")).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"following_id"}))

		ids, err := store.Following(ctx, "u1")
		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})

	t.Run("row error", func(t *testing.T) {
		store, mock := newMockFollowStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT follower_id FROM follows")).
			WithArgs("u2").
			WillReturnRows(sqlmock.NewRows([]string{"follower_id"}).AddRow("u1").RowError(0, errors.New("broken row")))

		_, err := store.Followers(ctx, "u2")
		assert.Error(t, err)
	})
}

func TestPostgresFollowStore_Counts(t *testing.T) {
	store, mock := newMockFollowStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM follows WHERE following_id = $1")).
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"followers", "following"}).AddRow(int64(2), int64(1)))

	counts, err := store.Counts(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, models.RelationCounts{Followers: 2, Following: 1}, counts)
}
