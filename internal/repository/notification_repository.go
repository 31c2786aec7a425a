package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resulta/resulta-gateway/internal/model"
)

// NotificationRepository persists the notification inbox and per-user read
// markers. The unique index on source_id backs the delta engine's dedup
// guarantee: concurrent checks over the same watermark race to insert, and
// the database keeps exactly one row per source record.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Insert stores a notification unless one with the same source_id already
// exists. Returns whether a row was actually inserted.
func (r *NotificationRepository) Insert(ctx context.Context, n model.Notification) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, source_id, title, message, kind, created_at, link, priority)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source_id) DO NOTHING`,
		n.ID, n.SourceID, n.Title, n.Message, n.Kind, n.CreatedAt, n.Link, n.Priority)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List returns notifications newest-first with the user's read state joined
// in. A limit of 0 returns everything.
func (r *NotificationRepository) List(ctx context.Context, userKey string, limit int) ([]model.Notification, error) {
	query := `SELECT n.id, n.source_id, n.title, n.message, n.kind, n.created_at, n.link, n.priority,
	                 (nr.user_key IS NOT NULL) AS is_read
	          FROM notifications n
	          LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_key = $1
	          ORDER BY n.created_at DESC, n.id DESC`
	args := []any{userKey}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.SourceID, &n.Title, &n.Message, &n.Kind,
			&n.CreatedAt, &n.Link, &n.Priority, &n.IsRead); err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// Trim evicts everything older than the max most recent notifications.
// Read markers go with their notification via ON DELETE CASCADE.
func (r *NotificationRepository) Trim(ctx context.Context, max int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM notifications
		 WHERE id NOT IN (
		     SELECT id FROM notifications ORDER BY created_at DESC, id DESC LIMIT $1
		 )`, max)
	return err
}

// MarkRead records a read marker; marking twice is a no-op.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userKey string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notification_reads (notification_id, user_key, read_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (notification_id, user_key) DO NOTHING`,
		notificationID, userKey)
	return err
}

func (r *NotificationRepository) ListUnreadIDs(ctx context.Context, userKey string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT n.id FROM notifications n
		 LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_key = $1
		 WHERE nr.user_key IS NULL
		 ORDER BY n.created_at DESC`, userKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userKey string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications n
		 LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_key = $1
		 WHERE nr.user_key IS NULL`, userKey).Scan(&count)
	return count, err
}
