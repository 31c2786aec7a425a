package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/model"
	"github.com/resulta/resulta-gateway/internal/notify"
)

// NotificationService exposes the inbox the delta engine maintains.
type NotificationService struct {
	engine *notify.Engine
	store  notify.Store
	log    zerolog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(engine *notify.Engine, store notify.Store, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		engine: engine,
		store:  store,
		log:    log.With().Str("component", "notification_service").Logger(),
	}
}

// List returns the inbox newest-first with the caller's read state.
func (s *NotificationService) List(ctx context.Context, userKey string) ([]model.Notification, error) {
	notifs, err := s.store.List(ctx, userKey, notify.MaxStored)
	if err != nil {
		return nil, err
	}
	if notifs == nil {
		notifs = []model.Notification{}
	}
	return notifs, nil
}

// UnreadCount returns the badge count for the caller.
func (s *NotificationService) UnreadCount(ctx context.Context, userKey string) (int, error) {
	return s.store.UnreadCount(ctx, userKey)
}

// MarkRead marks one notification read for the caller.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userKey string) error {
	return s.engine.MarkRead(ctx, notificationID, userKey)
}

// MarkAllRead marks every unread notification read for the caller.
func (s *NotificationService) MarkAllRead(ctx context.Context, userKey string) error {
	return s.engine.MarkAllRead(ctx, userKey)
}
