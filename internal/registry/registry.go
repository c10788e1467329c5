package registry

import (
	"context"
	"sync"
	"time"

	"newsdesk/internal/model"
	"newsdesk/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FireFunc is invoked when an article's publication deadline arrives.
type FireFunc func(id uuid.UUID)

type entry struct {
	timer  *time.Timer
	fireAt time.Time
}

// Registry owns the mapping from article id to its pending publication
// timer. At most one timer exists per id: scheduling an id that already has
// one replaces it, and once Cancel returns the old timer will not fire.
type Registry struct {
	mu     sync.Mutex
	timers map[uuid.UUID]*entry
	logger *zap.Logger
}

func New(logger *zap.Logger) *Registry {
	return &Registry{
		timers: make(map[uuid.UUID]*entry),
		logger: logger,
	}
}

// Schedule installs a timer that invokes onFire(id) once at fireAt, after
// disarming any timer already held for the id. The fired callback removes
// its own registry entry before running.
func (r *Registry) Schedule(id uuid.UUID, fireAt time.Time, onFire FireFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.timers[id]; ok {
		old.timer.Stop()
	}

	e := &entry{fireAt: fireAt}
	e.timer = time.AfterFunc(time.Until(fireAt), func() {
		// A replaced or cancelled timer finds a different entry (or none)
		// under the lock and must not reach onFire.
		r.mu.Lock()
		cur, ok := r.timers[id]
		if !ok || cur != e {
			r.mu.Unlock()
			return
		}
		delete(r.timers, id)
		r.mu.Unlock()

		onFire(id)
	})
	r.timers[id] = e

	r.logger.Debug("Publication timer set",
		zap.String("article_id", id.String()),
		zap.Time("fires_at", fireAt))
}

// Cancel disarms and removes the timer for id. No-op when none exists.
func (r *Registry) Cancel(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.timers[id]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(r.timers, id)
}

// Deadline reports the pending timer's deadline for id, if any.
func (r *Registry) Deadline(id uuid.UUID) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.timers[id]
	if !ok {
		return time.Time{}, false
	}
	return e.fireAt, true
}

// Len reports how many timers are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Recover rebuilds the registry from persisted state after a restart.
// Articles still ahead of their deadline get a timer; articles whose
// deadline passed while the process was down are fired immediately through
// the same onFire path, which re-validates before publishing.
func (r *Registry) Recover(ctx context.Context, st store.Store, onFire FireFunc) (int, error) {
	articles, err := st.ListScheduled(ctx)
	if err != nil {
		return 0, err
	}

	scheduled := 0
	now := time.Now()
	for _, a := range articles {
		if a.State() != model.StateScheduled {
			continue
		}
		if a.PublishAt.After(now) {
			r.Schedule(a.ID, *a.PublishAt, onFire)
			scheduled++
			continue
		}
		r.logger.Info("Deadline passed while down, publishing now",
			zap.String("article_id", a.ID.String()))
		onFire(a.ID)
	}

	r.logger.Info("Scheduler recovered", zap.Int("timers", scheduled))
	return scheduled, nil
}

// Stop disarms every timer. Used at shutdown; pending publications come
// back through Recover on the next start.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.timers {
		e.timer.Stop()
		delete(r.timers, id)
	}
}
