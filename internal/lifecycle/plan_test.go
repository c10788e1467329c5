package lifecycle

import (
	"testing"
	"time"

	"newsdesk/internal/model"

	"github.com/stretchr/testify/assert"
)

func articleAt(published bool, publishAt *time.Time) model.Article {
	a := model.NewArticle("author-1", "Title", "Content")
	a.Published = published
	a.PublishAt = publishAt
	return a
}

func timePtr(t time.Time) *time.Time { return &t }

func TestPlanCreate(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		publishAt *time.Time
		wantTimer TimerAction
		wantEvent model.EventKind
		wantState model.ArticleState
	}{
		{"no publishAt publishes immediately", nil, TimerNone, model.EventCreated, model.StatePublished},
		{"past publishAt publishes immediately", timePtr(past), TimerNone, model.EventCreated, model.StatePublished},
		{"future publishAt schedules silently", timePtr(future), TimerSchedule, model.EventNone, model.StateScheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanCreate(articleAt(false, tt.publishAt), now)

			assert.Equal(t, tt.wantTimer, plan.Timer)
			assert.Equal(t, tt.wantEvent, plan.Event)
			assert.Equal(t, tt.wantState, plan.Article.State())
			if tt.wantTimer == TimerSchedule {
				assert.Equal(t, future, plan.FireAt)
			}
			if tt.wantState == model.StatePublished {
				assert.Nil(t, plan.Article.PublishAt, "published articles clear publishAt")
			}
		})
	}
}

func TestPlanCreate_IgnoresRequestedPublishedFlag(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	// Creation derives published purely from the deadline.
	plan := PlanCreate(articleAt(true, timePtr(future)), now)

	assert.Equal(t, model.StateScheduled, plan.Article.State())
	assert.Equal(t, TimerSchedule, plan.Timer)
	assert.Equal(t, model.EventNone, plan.Event)
}

func TestPlanUpdate(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	later := now.Add(2 * time.Hour)
	past := now.Add(-time.Minute)
	published := true

	tests := []struct {
		name      string
		prior     model.Article
		change    model.Change
		wantTimer TimerAction
		wantEvent model.EventKind
		wantState model.ArticleState
	}{
		{
			name:      "reschedule replaces deadline silently",
			prior:     articleAt(false, timePtr(future)),
			change:    model.Change{PublishAt: timePtr(later), SetPublishAt: true},
			wantTimer: TimerSchedule,
			wantEvent: model.EventNone,
			wantState: model.StateScheduled,
		},
		{
			name:      "clearing publishAt reverts to silent draft",
			prior:     articleAt(false, timePtr(future)),
			change:    model.Change{SetPublishAt: true},
			wantTimer: TimerCancel,
			wantEvent: model.EventNone,
			wantState: model.StateDraft,
		},
		{
			name:      "backdated deadline publishes on the spot",
			prior:     articleAt(false, timePtr(future)),
			change:    model.Change{PublishAt: timePtr(past), SetPublishAt: true},
			wantTimer: TimerCancel,
			wantEvent: model.EventUpdated,
			wantState: model.StatePublished,
		},
		{
			name:      "setting published cancels the schedule",
			prior:     articleAt(false, timePtr(future)),
			change:    model.Change{Published: &published},
			wantTimer: TimerCancel,
			wantEvent: model.EventUpdated,
			wantState: model.StatePublished,
		},
		{
			name:      "editing a published article stays published",
			prior:     articleAt(true, nil),
			change:    model.Change{Title: strPtr("New title")},
			wantTimer: TimerCancel,
			wantEvent: model.EventUpdated,
			wantState: model.StatePublished,
		},
		{
			name:      "editing a draft stays silent",
			prior:     articleAt(false, nil),
			change:    model.Change{Content: strPtr("New content")},
			wantTimer: TimerCancel,
			wantEvent: model.EventNone,
			wantState: model.StateDraft,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanUpdate(tt.prior, tt.change, now)

			assert.Equal(t, tt.wantTimer, plan.Timer)
			assert.Equal(t, tt.wantEvent, plan.Event)
			assert.Equal(t, tt.wantState, plan.Article.State())
		})
	}
}

func TestPlanUpdate_PartialChangeKeepsStoredFields(t *testing.T) {
	now := time.Now()
	prior := articleAt(false, timePtr(now.Add(time.Hour)))
	prior.Title = "Original title"

	plan := PlanUpdate(prior, model.Change{Content: strPtr("Edited")}, now)

	assert.Equal(t, "Original title", plan.Article.Title)
	assert.Equal(t, "Edited", plan.Article.Content)
	assert.Equal(t, model.StateScheduled, plan.Article.State(), "untouched schedule survives")
}

func TestPlanPublishNow(t *testing.T) {
	prior := articleAt(false, timePtr(time.Now().Add(time.Hour)))

	plan := PlanPublishNow(prior)

	assert.True(t, plan.Article.Published)
	assert.Nil(t, plan.Article.PublishAt)
	assert.Equal(t, TimerCancel, plan.Timer)
	assert.Equal(t, model.EventPublished, plan.Event)
}

func TestPlanDelete(t *testing.T) {
	plan := PlanDelete()

	assert.Equal(t, TimerCancel, plan.Timer)
	assert.Equal(t, model.EventDeleted, plan.Event)
}

func TestPlanDue(t *testing.T) {
	now := time.Now()

	t.Run("due article publishes and emits", func(t *testing.T) {
		current := articleAt(false, timePtr(now.Add(-time.Second)))

		plan, due := PlanDue(current, now)

		assert.True(t, due)
		assert.True(t, plan.Article.Published)
		assert.Nil(t, plan.Article.PublishAt)
		assert.Equal(t, model.EventPublished, plan.Event)
	})

	t.Run("already published is stale", func(t *testing.T) {
		_, due := PlanDue(articleAt(true, nil), now)
		assert.False(t, due)
	})

	t.Run("reverted draft is stale", func(t *testing.T) {
		_, due := PlanDue(articleAt(false, nil), now)
		assert.False(t, due)
	})

	t.Run("rescheduled to a later deadline is stale", func(t *testing.T) {
		_, due := PlanDue(articleAt(false, timePtr(now.Add(time.Hour))), now)
		assert.False(t, due)
	})
}

func strPtr(s string) *string { return &s }
