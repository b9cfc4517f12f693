package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"articledash/internal/controller"
	"articledash/internal/store"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultIdleTimeout = 30 * time.Minute
	sweepSpec          = "@every 1m"
)

// Factory builds a fresh controller for a new session.
type Factory func() *controller.Controller

type entry struct {
	ctrl     *controller.Controller
	once     sync.Once
	lastSeen time.Time
}

// Registry keeps one live controller per dashboard session. Controllers that
// sit idle are persisted to the store and dropped; the next request for the
// same session restores them.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	store   store.Store
	factory Factory
	idle    time.Duration
	logger  *zap.Logger
	now     func() time.Time
	cron    *cron.Cron
}

func NewRegistry(st store.Store, factory Factory, idle time.Duration, logger *zap.Logger) *Registry {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Registry{
		entries: make(map[string]*entry),
		store:   st,
		factory: factory,
		idle:    idle,
		logger:  logger,
		now:     time.Now,
	}
}

// NewID returns a fresh session ID.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like something NewID produced.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the controller for id, restoring it from the store on first use.
// The second result is true when the controller had to be created.
func (r *Registry) Get(ctx context.Context, id string) (*controller.Controller, bool) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{ctrl: r.factory()}
		r.entries[id] = e
	}
	e.lastSeen = r.now()
	r.mu.Unlock()

	e.once.Do(func() { r.restore(ctx, id, e.ctrl) })
	return e.ctrl, !ok
}

func (r *Registry) restore(ctx context.Context, id string, ctrl *controller.Controller) {
	snap, err := r.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		r.logger.Warn("Failed to restore session", zap.String("session", id), zap.Error(err))
		return
	}
	ctrl.Restore(*snap)
	r.logger.Debug("Session restored", zap.String("session", id), zap.String("view", string(snap.View)))
}

// Persist saves the current snapshot of a live session.
func (r *Registry) Persist(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	snap := e.ctrl.Export()
	return r.store.Save(ctx, id, &snap)
}

// Sweep persists and drops every controller idle for longer than the idle
// timeout. It returns how many were dropped.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	evicted := make(map[string]*entry)
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			evicted[id] = e
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for id, e := range evicted {
		snap := e.ctrl.Export()
		if err := r.store.Save(ctx, id, &snap); err != nil {
			r.logger.Error("Failed to persist idle session", zap.String("session", id), zap.Error(err))
		}
		e.ctrl.Close()
	}
	if len(evicted) > 0 {
		r.logger.Info("Evicted idle sessions", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Len is the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Start schedules Sweep every minute.
func (r *Registry) Start() error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(sweepSpec, func() { r.Sweep(context.Background()) }); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("Session sweeper scheduled", zap.Duration("idle_timeout", r.idle))
	return nil
}

// Stop halts the sweeper and persists every live session.
func (r *Registry) Stop(ctx context.Context) {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}

	r.mu.Lock()
	live := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for id, e := range live {
		snap := e.ctrl.Export()
		if err := r.store.Save(ctx, id, &snap); err != nil {
			r.logger.Error("Failed to persist session", zap.String("session", id), zap.Error(err))
		}
		e.ctrl.Close()
	}
}
