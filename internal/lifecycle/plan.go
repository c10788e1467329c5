package lifecycle

import (
	"time"

	"newsdesk/internal/model"
)

// TimerAction tells the job registry what to do after a write.
type TimerAction int

const (
	TimerNone TimerAction = iota
	// TimerSchedule installs a timer at FireAt, replacing any existing one.
	TimerSchedule
	// TimerCancel removes any pending timer. Safe when none exists.
	TimerCancel
)

// Plan is the outcome of running a requested change through the state
// machine: the normalized article to persist plus the side effects owed.
// Title/content/media ride through untouched; only the scheduling pair is
// ever rewritten.
type Plan struct {
	Article model.Article
	Timer   TimerAction
	FireAt  time.Time
	Event   model.EventKind
}

// PlanCreate decides the first save of a record. A future publishAt makes
// the article Scheduled and silent; anything else publishes immediately and
// announces the creation. The request's own published flag is ignored, as
// creation never produces a draft.
func PlanCreate(article model.Article, now time.Time) Plan {
	if article.PublishAt != nil && article.PublishAt.After(now) {
		article.Published = false
		return Plan{
			Article: article,
			Timer:   TimerSchedule,
			FireAt:  *article.PublishAt,
		}
	}

	article.Published = true
	article.PublishAt = nil
	return Plan{
		Article: article,
		Event:   model.EventCreated,
	}
}

// PlanUpdate merges a partial change into the prior record and decides the
// side effects from the normalized result. Unspecified fields keep their
// stored values.
func PlanUpdate(prior model.Article, change model.Change, now time.Time) Plan {
	merged := change.Apply(prior)

	// An unpublished deadline that has already passed is never persisted;
	// it publishes on the spot.
	if merged.Published || (merged.PublishAt != nil && !merged.PublishAt.After(now)) {
		merged.Published = true
		merged.PublishAt = nil
		return Plan{
			Article: merged,
			Timer:   TimerCancel,
			Event:   model.EventUpdated,
		}
	}

	if merged.PublishAt != nil {
		return Plan{
			Article: merged,
			Timer:   TimerSchedule,
			FireAt:  *merged.PublishAt,
		}
	}

	// Reverting to draft is silent.
	return Plan{
		Article: merged,
		Timer:   TimerCancel,
	}
}

// PlanPublishNow forces publication regardless of prior state.
func PlanPublishNow(prior model.Article) Plan {
	prior.Published = true
	prior.PublishAt = nil
	return Plan{
		Article: prior,
		Timer:   TimerCancel,
		Event:   model.EventPublished,
	}
}

// PlanDelete removes any pending timer and announces the deletion.
func PlanDelete() Plan {
	return Plan{
		Timer: TimerCancel,
		Event: model.EventDeleted,
	}
}

// PlanDue handles a timer deadline against the article's current persisted
// state. The timer is an independent actor, so the record is re-validated
// here: if it is no longer Scheduled-and-due the fire is stale and the
// second return is false.
func PlanDue(current model.Article, now time.Time) (Plan, bool) {
	if current.Published || current.PublishAt == nil || current.PublishAt.After(now) {
		return Plan{}, false
	}

	current.Published = true
	current.PublishAt = nil
	return Plan{
		Article: current,
		Event:   model.EventPublished,
	}, true
}
