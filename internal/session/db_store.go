package session

import (
	"context"
	"errors"
	"time"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
)

// DBStore keeps sessions in the sessions table. Used when Redis is off.
type DBStore struct {
	repo repository.SessionRepository
}

func NewDBStore(repo repository.SessionRepository) *DBStore { return &DBStore{repo: repo} }

func (s *DBStore) Save(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	return s.repo.Create(ctx, &model.Session{ID: tokenHash, UserID: userID, ExpiresAt: expiresAt.UTC()})
}

func (s *DBStore) Lookup(ctx context.Context, tokenHash string) (string, error) {
	sess, err := s.repo.GetActive(ctx, tokenHash, time.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return sess.UserID, nil
}

func (s *DBStore) Revoke(ctx context.Context, tokenHash string) error {
	return s.repo.Delete(ctx, tokenHash)
}

// Purge deletes expired rows and returns how many were removed.
func (s *DBStore) Purge(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now().UTC())
}
