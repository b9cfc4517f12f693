package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"articledash/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// HybridStore combines Redis (session metadata) and Badger (form drafts)
type HybridStore struct {
	rdb *redis.Client
	db  *badger.DB
	ttl time.Duration
}

// NewHybridStore initializes databases.
// Pass badgerPath="" to keep drafts inline in Redis.
func NewHybridStore(redisAddr string, badgerPath string, ttl time.Duration) (*HybridStore, error) {
	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Initialize Badger
	var db *badger.DB
	var err error

	if badgerPath != "" {
		opts := badger.DefaultOptions(badgerPath)
		opts.Logger = nil // Silence default logger
		db, err = badger.Open(opts)
		if err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to open badger: %w", err)
		}
	}

	return &HybridStore{rdb: rdb, db: db, ttl: ttl}, nil
}

// Close cleans up connections
func (s *HybridStore) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// RunGC reclaims Badger value log space. Safe to call without Badger.
func (s *HybridStore) RunGC() error {
	if s.db == nil {
		return nil
	}
	err := s.db.RunValueLogGC(0.7)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

func sessionKey(id string) string { return "session:" + id }
func draftKey(id string) []byte   { return []byte("draft:" + id) }

// Save splits the snapshot: metadata to Redis + draft to Badger
func (s *HybridStore) Save(ctx context.Context, id string, snap *model.Snapshot) error {
	meta := *snap
	meta.Draft.Errors = nil
	if s.db != nil {
		meta.Draft = model.FormState{}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return err
	}

	if s.db == nil {
		return nil
	}

	// Empty drafts are removed rather than stored
	if snap.Draft.Empty() {
		return s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(draftKey(id))
		})
	}

	draft, err := json.Marshal(model.FormState{Title: snap.Draft.Title, Content: snap.Draft.Content})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(draftKey(id), draft)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get combines data: metadata from Redis + draft from Badger
func (s *HybridStore) Get(ctx context.Context, id string) (*model.Snapshot, error) {
	val, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, err
	}

	if s.db != nil {
		err = s.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get(draftKey(id))
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &snap.Draft)
			})
		})

		if err != nil && err != badger.ErrKeyNotFound {
			return nil, err
		}
	}

	return &snap, nil
}

// Delete removes both halves of a session
func (s *HybridStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return err
	}
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(draftKey(id))
	})
}
