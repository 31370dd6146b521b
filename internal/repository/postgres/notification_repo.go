package pgrepo

import (
	"context"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/errs"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, scope, user_id, title, message, type, reference_id, is_read, created_at`

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	var userID pgtype.UUID
	if n.UserID != nil {
		userID = stringToUUID(*n.UserID)
	}

	var (
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO notifications (scope, user_id, title, message, type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		string(n.Scope), userID, n.Title, n.Message, string(n.Type), n.ReferenceID,
	).Scan(&id, &createdAt)
	if err != nil {
		return errs.NewInternalError("notifications.create", err)
	}
	n.ID = uuidToString(id)
	n.CreatedAt = pgtimeToTime(createdAt)
	return nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return r.list(ctx, `SELECT `+notificationColumns+` FROM notifications
		WHERE scope = 'user' AND user_id = $1 ORDER BY created_at DESC LIMIT $2`, stringToUUID(userID), limit)
}

func (r *notificationRepository) ListAdmin(ctx context.Context, limit int) ([]domain.Notification, error) {
	return r.list(ctx, `SELECT `+notificationColumns+` FROM notifications
		WHERE scope = 'admin' ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *notificationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Notification, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, errs.NewInternalError("notifications.list", err)
	}
	defer rows.Close()

	result := make([]domain.Notification, 0)
	for rows.Next() {
		var (
			n          domain.Notification
			id, userID pgtype.UUID
			scope, typ string
			createdAt  pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &scope, &userID, &n.Title, &n.Message, &typ, &n.ReferenceID, &n.IsRead, &createdAt); err != nil {
			return nil, errs.NewInternalError("notifications.scan", err)
		}
		n.ID = uuidToString(id)
		n.Scope = domain.NotificationScope(scope)
		n.UserID = strPtr(uuidToString(userID))
		n.Type = domain.NotificationType(typ)
		n.CreatedAt = pgtimeToTime(createdAt)
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`,
		stringToUUID(userID)).Scan(&n)
	if err != nil {
		return 0, errs.NewInternalError("notifications.count_unread", err)
	}
	return n, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		stringToUUID(id), stringToUUID(userID))
	if err != nil {
		return errs.NewInternalError("notifications.mark_read", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewObjectNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`,
		stringToUUID(userID))
	if err != nil {
		return 0, errs.NewInternalError("notifications.mark_all_read", err)
	}
	return tag.RowsAffected(), nil
}
