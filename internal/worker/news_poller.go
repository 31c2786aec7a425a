package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/model"
	"github.com/resulta/resulta-gateway/internal/notify"
	"github.com/resulta/resulta-gateway/internal/upstream"
)

// NewsPoller periodically fetches the news feed and runs the delta engine
// for every active subscriber, so inboxes fill in even between screen
// visits. Strictly polling; there is no push path.
type NewsPoller struct {
	client   *upstream.Client
	engine   *notify.Engine
	subs     *notify.Subscribers
	token    string
	interval time.Duration
	log      zerolog.Logger
}

func NewNewsPoller(client *upstream.Client, engine *notify.Engine, subs *notify.Subscribers, token string, interval time.Duration, log zerolog.Logger) *NewsPoller {
	return &NewsPoller{
		client:   client,
		engine:   engine,
		subs:     subs,
		token:    token,
		interval: interval,
		log:      log.With().Str("component", "news_poller").Logger(),
	}
}

// Start runs the polling loop until the context is cancelled.
func (w *NewsPoller) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("NewsPoller started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("NewsPoller stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *NewsPoller) poll(ctx context.Context) {
	records, err := w.client.FetchNews(ctx, w.token, nil)
	if err != nil {
		// Upstream hiccups are expected; the next tick retries.
		w.log.Warn().Err(err).Msg("news fetch failed")
		return
	}

	users, err := w.subs.Active(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("subscriber lookup failed")
		return
	}

	items := make([]notify.Item, 0, len(records))
	for _, r := range records {
		items = append(items, notify.Item{
			ID:        r.ID,
			Title:     r.Title,
			Message:   r.Body,
			Kind:      model.NotificationKindNews,
			CreatedAt: r.CreatedAt,
			Link:      r.Link,
			Priority:  r.Priority,
		})
	}

	created := 0
	for _, userKey := range users {
		notifs, err := w.engine.CheckForNew(ctx, notify.FeedNews, userKey, items)
		if err != nil {
			w.log.Warn().Err(err).Str("user", userKey).Msg("delta check failed")
			continue
		}
		created += len(notifs)
	}

	if created > 0 {
		w.log.Info().Int("notifications", created).Int("subscribers", len(users)).Msg("poll cycle complete")
	}
}
