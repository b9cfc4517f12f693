package store

import (
	"context"
	"errors"

	"articledash/internal/model"
)

var (
	ErrNotFound = errors.New("session not found")
)

// Store persists dashboard session snapshots between requests and restarts.
type Store interface {
	Save(ctx context.Context, id string, snap *model.Snapshot) error
	Get(ctx context.Context, id string) (*model.Snapshot, error)
	Delete(ctx context.Context, id string) error
}
