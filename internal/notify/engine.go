// Package notify detects feed items that appeared since a user's last look
// and turns them into deduplicated inbox notifications.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/model"
	"github.com/resulta/resulta-gateway/internal/store"
)

// MaxStored bounds the notification inbox. Older entries beyond the bound
// are evicted, newest kept.
const MaxStored = 50

// FeedNews is the delta-engine feed name for the news stream.
const FeedNews = "news"

// Item is one feed record under delta consideration, already reduced to the
// fields a notification needs.
type Item struct {
	ID        string
	Title     string
	Message   string
	Kind      model.NotificationKind
	CreatedAt time.Time
	Link      string
	Priority  string
}

// Store persists notifications and per-user read markers. Insert must be
// idempotent on SourceID: a second insert for the same source is a no-op.
// That idempotence, not locking, is what keeps two concurrent delta checks
// over the same watermark from double-delivering.
type Store interface {
	Insert(ctx context.Context, n model.Notification) (inserted bool, err error)
	List(ctx context.Context, userKey string, limit int) ([]model.Notification, error)
	Trim(ctx context.Context, max int) error
	MarkRead(ctx context.Context, notificationID, userKey string) error
	ListUnreadIDs(ctx context.Context, userKey string) ([]string, error)
	UnreadCount(ctx context.Context, userKey string) (int, error)
}

// Engine runs watermark-based delta checks against a feed.
type Engine struct {
	kv    store.KV
	store Store
	log   zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewEngine creates a delta engine over the given watermark KV and
// notification store.
func NewEngine(kv store.KV, st Store, log zerolog.Logger) *Engine {
	return &Engine{
		kv:    kv,
		store: st,
		log:   log.With().Str("component", "notify_engine").Logger(),
		now:   time.Now,
	}
}

func watermarkKey(feed, userKey string) string {
	return fmt.Sprintf("watermark:%s:%s", feed, userKey)
}

// CheckForNew compares items against the stored watermark for (userKey, feed)
// and creates a notification for every item strictly newer than it.
//
// On the first check for a feed no notifications are emitted; only the
// watermark is established, so a populated feed does not flood the inbox.
// The watermark then advances to the time of the check rather than the max
// item timestamp, so clock skew or out-of-order arrival cannot cause
// double-delivery on the next check.
func (e *Engine) CheckForNew(ctx context.Context, feed, userKey string, items []Item) ([]model.Notification, error) {
	key := watermarkKey(feed, userKey)
	checkedAt := e.now()

	raw, exists, err := e.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read watermark: %w", err)
	}
	if !exists {
		if err := e.kv.Set(ctx, key, checkedAt.Format(time.RFC3339Nano)); err != nil {
			return nil, fmt.Errorf("establish watermark: %w", err)
		}
		e.log.Debug().Str("feed", feed).Str("user", userKey).Msg("watermark established, suppressing initial feed")
		return nil, nil
	}

	watermark, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// Corrupt watermark: re-establish instead of treating the whole
		// feed as new.
		e.log.Warn().Str("feed", feed).Str("raw", raw).Msg("unparseable watermark, resetting")
		if err := e.kv.Set(ctx, key, checkedAt.Format(time.RFC3339Nano)); err != nil {
			return nil, fmt.Errorf("reset watermark: %w", err)
		}
		return nil, nil
	}

	var created []model.Notification
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			e.log.Warn().Str("feed", feed).Str("source_id", item.ID).Msg("item has no usable timestamp, skipping delta check")
			continue
		}
		if !item.CreatedAt.After(watermark) {
			continue
		}

		n := model.Notification{
			ID:        uuid.New().String(),
			SourceID:  item.ID,
			Title:     item.Title,
			Message:   item.Message,
			Kind:      item.Kind,
			CreatedAt: checkedAt,
			Link:      item.Link,
			Priority:  item.Priority,
		}
		inserted, err := e.store.Insert(ctx, n)
		if err != nil {
			return created, fmt.Errorf("insert notification: %w", err)
		}
		if inserted {
			created = append(created, n)
		}
	}

	if err := e.store.Trim(ctx, MaxStored); err != nil {
		return created, fmt.Errorf("trim notifications: %w", err)
	}
	if err := e.kv.Set(ctx, key, checkedAt.Format(time.RFC3339Nano)); err != nil {
		return created, fmt.Errorf("advance watermark: %w", err)
	}
	return created, nil
}

// MarkRead records that the user has seen one notification.
func (e *Engine) MarkRead(ctx context.Context, notificationID, userKey string) error {
	return e.store.MarkRead(ctx, notificationID, userKey)
}

// MarkAllRead marks every currently-unread notification read, one item at a
// time. There is no atomic mark-all primitive; a failure partway leaves the
// already-marked items marked.
func (e *Engine) MarkAllRead(ctx context.Context, userKey string) error {
	ids, err := e.store.ListUnreadIDs(ctx, userKey)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := e.store.MarkRead(ctx, id, userKey); err != nil {
			return err
		}
	}
	return nil
}
