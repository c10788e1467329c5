package model

import "time"

// Change describes a partial update. Nil pointer fields keep the stored
// value. PublishAt needs three states (leave alone / set / clear), so it
// only takes effect when SetPublishAt is true; a nil PublishAt then clears
// the schedule.
type Change struct {
	Title        *string
	Content      *string
	Images       *[]string
	Files        *[]string
	Published    *bool
	PublishAt    *time.Time
	SetPublishAt bool
}

// Apply merges the change into a copy of prior and returns it.
// Timestamps are left for the store to maintain.
func (c Change) Apply(prior Article) Article {
	next := prior
	if c.Title != nil {
		next.Title = *c.Title
	}
	if c.Content != nil {
		next.Content = *c.Content
	}
	if c.Images != nil {
		next.Images = *c.Images
	}
	if c.Files != nil {
		next.Files = *c.Files
	}
	if c.Published != nil {
		next.Published = *c.Published
	}
	if c.SetPublishAt {
		next.PublishAt = c.PublishAt
	}
	return next
}
