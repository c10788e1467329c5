package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"newsdesk/internal/lifecycle"
	"newsdesk/internal/model"
	"newsdesk/internal/notify"
	"newsdesk/internal/registry"
	"newsdesk/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrForbidden means the caller does not own the article.
	ErrForbidden = errors.New("not the article's author")
)

// Publisher is the composition root of the publication core. Every external
// trigger (create, update, publish-now, delete, timer deadline) runs the
// same sequence: plan against current persisted state, persist, then apply
// the timer and notification side effects. The persisted record is the
// source of truth; side-effect failures are logged, never returned.
type Publisher struct {
	store    store.Store
	registry *registry.Registry
	sink     notify.Sink
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

// lockEntry serializes operations per article id. Entries are refcounted so
// the map does not grow with every article ever touched.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func New(st store.Store, reg *registry.Registry, sink notify.Sink, logger *zap.Logger) *Publisher {
	return &Publisher{
		store:    st,
		registry: reg,
		sink:     sink,
		logger:   logger,
		locks:    make(map[uuid.UUID]*lockEntry),
	}
}

// lock takes the article's critical section and returns its release func.
// A user write and a timer fire for the same id never interleave their
// persist-then-react steps; unrelated ids proceed in parallel.
func (p *Publisher) lock(id uuid.UUID) func() {
	p.mu.Lock()
	e, ok := p.locks[id]
	if !ok {
		e = &lockEntry{}
		p.locks[id] = e
	}
	e.refs++
	p.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		p.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(p.locks, id)
		}
		p.mu.Unlock()
	}
}

// Create persists a new article. Without a future publishAt the article is
// published on the spot and announced; with one it is silently scheduled.
func (p *Publisher) Create(ctx context.Context, article model.Article) (*model.Article, error) {
	plan := lifecycle.PlanCreate(article, time.Now())

	if err := p.store.Create(ctx, &plan.Article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	p.react(plan.Article.ID, plan)
	return &plan.Article, nil
}

// Update merges a partial change into the stored record. The normalized
// result decides whether a timer is replaced, cancelled, or left alone.
func (p *Publisher) Update(ctx context.Context, id uuid.UUID, author string, change model.Change) (*model.Article, error) {
	unlock := p.lock(id)
	defer unlock()

	current, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Author != author {
		return nil, ErrForbidden
	}

	plan := lifecycle.PlanUpdate(*current, change, time.Now())

	if err := p.store.Update(ctx, &plan.Article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	p.react(id, plan)
	return &plan.Article, nil
}

// PublishNow forces immediate publication regardless of prior state.
func (p *Publisher) PublishNow(ctx context.Context, id uuid.UUID, author string) (*model.Article, error) {
	unlock := p.lock(id)
	defer unlock()

	current, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Author != author {
		return nil, ErrForbidden
	}

	plan := lifecycle.PlanPublishNow(*current)

	if err := p.store.Update(ctx, &plan.Article); err != nil {
		return nil, fmt.Errorf("publish article: %w", err)
	}

	p.react(id, plan)
	return &plan.Article, nil
}

// Delete removes the record, disarms its timer, and announces the deletion
// with just the id.
func (p *Publisher) Delete(ctx context.Context, id uuid.UUID, author string) error {
	unlock := p.lock(id)
	defer unlock()

	current, err := p.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Author != author {
		return ErrForbidden
	}

	if err := p.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	p.react(id, lifecycle.PlanDelete())
	return nil
}

// HandleDue runs when an article's publication deadline arrives. The timer
// is an independent actor, so the record is re-read and re-validated before
// anything is written; a deadline that lost a race with an edit, delete, or
// explicit publish is discarded.
func (p *Publisher) HandleDue(id uuid.UUID) {
	unlock := p.lock(id)
	defer unlock()

	ctx := context.Background()

	current, err := p.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Debug("Stale fire: article gone",
				zap.String("article_id", id.String()))
			return
		}
		p.logger.Error("Failed to read article at deadline",
			zap.String("article_id", id.String()), zap.Error(err))
		return
	}

	plan, due := lifecycle.PlanDue(*current, time.Now())
	if !due {
		p.logger.Debug("Stale fire discarded",
			zap.String("article_id", id.String()))
		return
	}

	if err := p.store.Update(ctx, &plan.Article); err != nil {
		// Self-heals on the next restart: the record is still in the
		// scheduled index, so Recover fires it again.
		p.logger.Error("Failed to persist scheduled publication",
			zap.String("article_id", id.String()), zap.Error(err))
		return
	}

	p.logger.Info("Published scheduled article",
		zap.String("article_id", id.String()),
		zap.String("title", plan.Article.Title))
	p.react(id, plan)
}

// Recover rebuilds pending timers from the store. Must finish before the
// API starts handling requests that could race with it.
func (p *Publisher) Recover(ctx context.Context) (int, error) {
	return p.registry.Recover(ctx, p.store, p.HandleDue)
}

// react applies a plan's side effects after a successful persist. Both the
// timer step and the notification step always run; neither can fail the
// request, the durable record already holds the outcome.
func (p *Publisher) react(id uuid.UUID, plan lifecycle.Plan) {
	switch plan.Timer {
	case lifecycle.TimerSchedule:
		p.registry.Schedule(id, plan.FireAt, p.HandleDue)
	case lifecycle.TimerCancel:
		p.registry.Cancel(id)
	}

	if plan.Event == model.EventNone {
		return
	}
	event := model.Event{Kind: plan.Event, ID: id}
	if plan.Event != model.EventDeleted {
		a := plan.Article
		event.Article = &a
	}
	p.sink.Emit(event)
}
