package dashboard

import (
	"log/slog"
	"sync"
	"time"

	"roxat-report/internal/storage"
)

type entry struct {
	d        *Dashboard
	lastUsed time.Time
}

// Registry holds one Dashboard per session.
type Registry struct {
	log     *slog.Logger
	fetcher Fetcher
	opts    Options

	mu    sync.Mutex
	items map[string]*entry
}

func NewRegistry(log *slog.Logger, fetcher Fetcher, opts Options) *Registry {
	return &Registry{
		log:     log,
		fetcher: fetcher,
		opts:    opts.withDefaults(),
		items:   make(map[string]*entry),
	}
}

// Get returns the session's dashboard, creating it on first use.
func (r *Registry) Get(sess storage.Session) *Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.items[sess.ID]; ok {
		e.lastUsed = r.opts.Now()
		return e.d
	}

	d := New(r.log.With(slog.String("session", sess.ID)), r.fetcher, sess.Token, r.opts)
	r.items[sess.ID] = &entry{d: d, lastUsed: r.opts.Now()}
	return d
}

func (r *Registry) Drop(id string) {
	r.mu.Lock()
	e, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if ok {
		e.d.Close()
	}
}

// Sweep drops dashboards unused for longer than idle and returns how many were dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}

	cutoff := r.opts.Now().Add(-idle)

	r.mu.Lock()
	var stale []*Dashboard
	for id, e := range r.items {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e.d)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, d := range stale {
		d.Close()
	}

	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
