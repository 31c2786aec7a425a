package model

import "time"

// NotificationKind classifies a notification for screen-side rendering.
type NotificationKind string

const (
	NotificationKindNews   NotificationKind = "news"
	NotificationKindResult NotificationKind = "result"
	NotificationKindSystem NotificationKind = "system"
)

// Notification is one inbox entry produced by the delta engine.
// SourceID is the dedup key: at most one notification per underlying record
// ever exists in the store.
type Notification struct {
	ID        string           `json:"id"`
	SourceID  string           `json:"source_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
	IsRead    bool             `json:"is_read"`
	Link      string           `json:"link,omitempty"`
	Priority  string           `json:"priority,omitempty"`
}
