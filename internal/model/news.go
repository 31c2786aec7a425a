package model

import (
	"encoding/json"
	"time"
)

// ReadMarker records that one user has seen a news item.
// UserKey is the canonical identity (JWT subject), the same value the
// read-state reader compares against.
type ReadMarker struct {
	UserKey string    `json:"user_key"`
	ReadAt  time.Time `json:"read_at"`
}

// NewsRecord is one announcement or news item from the upstream feed.
type NewsRecord struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Category  string       `json:"category"`
	Author    string       `json:"author"`
	Priority  string       `json:"priority"`
	Link      string       `json:"link,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	ReadBy    []ReadMarker `json:"read_by,omitempty"`
}

// UnmarshalJSON decodes the record with a lenient created_at: a malformed
// date zeroes the field rather than failing the whole feed payload.
func (n *NewsRecord) UnmarshalJSON(data []byte) error {
	type plain NewsRecord
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"created_at"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.CreatedAt = lenientTime(aux.CreatedAt, "news.created_at")
	return nil
}

// IsReadBy reports whether the given user has a read marker on the item.
func (n NewsRecord) IsReadBy(userKey string) bool {
	for _, m := range n.ReadBy {
		if m.UserKey == userKey {
			return true
		}
	}
	return false
}
