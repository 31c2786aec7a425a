package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/filter"
	"github.com/resulta/resulta-gateway/internal/model"
	"github.com/resulta/resulta-gateway/internal/notify"
	"github.com/resulta/resulta-gateway/internal/upstream"
)

// NewsSchema declares the searchable fields and facets of the news screen.
var NewsSchema = filter.Schema{
	SearchFields: []string{"title", "body", "author"},
	Facets: map[string]string{
		"category": "category",
		"priority": "priority",
		"author":   "author",
	},
}

// NewsView is one news item with the caller's read state resolved.
type NewsView struct {
	model.NewsRecord
	IsRead bool `json:"is_read"`
}

// NewsService serves the filtered news feed and maintains the notification
// inbox behind it. Every listing runs the delta engine after the page is
// built, mirroring the screens' render-then-check order.
type NewsService struct {
	client *upstream.Client
	engine *notify.Engine
	subs   *notify.Subscribers
	log    zerolog.Logger
}

// NewNewsService creates a NewsService.
func NewNewsService(client *upstream.Client, engine *notify.Engine, subs *notify.Subscribers, log zerolog.Logger) *NewsService {
	return &NewsService{
		client: client,
		engine: engine,
		subs:   subs,
		log:    log.With().Str("component", "news_service").Logger(),
	}
}

// ListNews returns one page of the filtered feed and then feeds the full
// record list through the delta engine. A delta failure never fails the
// listing; the inbox catches up on the next check.
func (s *NewsService) ListNews(ctx context.Context, token, userKey string, spec filter.Spec) (filter.Result[NewsView], error) {
	records, err := s.client.FetchNews(ctx, token, nil)
	if err != nil {
		return filter.Result[NewsView]{}, err
	}

	views := make([]NewsView, 0, len(records))
	for _, r := range records {
		views = append(views, NewsView{NewsRecord: r, IsRead: r.IsReadBy(userKey)})
	}
	result := filter.Apply(views, NewsSchema, spec)

	if _, err := s.engine.CheckForNew(ctx, notify.FeedNews, userKey, toItems(records)); err != nil {
		s.log.Warn().Err(err).Str("user", userKey).Msg("delta check failed")
	}
	if err := s.subs.Touch(ctx, userKey); err != nil {
		s.log.Warn().Err(err).Str("user", userKey).Msg("subscriber touch failed")
	}
	return result, nil
}

// MarkRead records upstream that the user has seen one news item.
func (s *NewsService) MarkRead(ctx context.Context, token, itemID, userKey string) error {
	return s.client.MarkRead(ctx, token, itemID, userKey)
}

// MarkAllRead marks every currently-unread item, one call per item; the
// upstream API has no atomic mark-all primitive.
func (s *NewsService) MarkAllRead(ctx context.Context, token, userKey string) error {
	records, err := s.client.FetchNews(ctx, token, nil)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.IsReadBy(userKey) {
			continue
		}
		if err := s.client.MarkRead(ctx, token, r.ID, userKey); err != nil {
			return err
		}
	}
	return nil
}

func toItems(records []model.NewsRecord) []notify.Item {
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
	return items
}
