package services

import (
	"context"
	"database/sql"

	"github.com/foodieshare/foodieshare-backend/internal/models"
)

// PostgresFollowStore keeps follow edges in the follows table. Every mutation
// is a single statement and the primary key on (follower_id, following_id)
// rejects duplicate edges.
type PostgresFollowStore struct {
	db *sql.DB
}

func NewPostgresFollowStore(db *sql.DB) *PostgresFollowStore {
	return &PostgresFollowStore{db: db}
}

// Add inserts the edge. created is false when it already existed.
func (s *PostgresFollowStore) Add(ctx context.Context, followerID, followingID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`, followerID, followingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remove deletes the edge. removed is false when there was nothing to delete.
func (s *PostgresFollowStore) Remove(ctx context.Context, followerID, followingID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND following_id = $2
	`, followerID, followingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresFollowStore) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)
	`, followerID, followingID).Scan(&exists)
	return exists, err
}

// Followers returns the uids following uid, oldest edge first.
func (s *PostgresFollowStore) Followers(ctx context.Context, uid string) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT follower_id FROM follows WHERE following_id = $1 ORDER BY created_at ASC
	`, uid)
}

// Following returns the uids uid follows, oldest edge first.
func (s *PostgresFollowStore) Following(ctx context.Context, uid string) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT following_id FROM follows WHERE follower_id = $1 ORDER BY created_at ASC
	`, uid)
}

func (s *PostgresFollowStore) Counts(ctx context.Context, uid string) (models.RelationCounts, error) {
	var counts models.RelationCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`, uid).Scan(&counts.Followers, &counts.Following)
	return counts, err
}

func (s *PostgresFollowStore) queryIDs(ctx context.Context, query, uid string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
