package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-trades-backend/internal/domain"
)

type notificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (user_id, sender_id, title, description, notification_type, image_url, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, notification_code`
	now := time.Now().UTC()
	if err := r.db.QueryRow(ctx, query,
		n.UserID, n.SenderID, n.Title, n.Description, n.Type, n.ImageURL, now,
	).Scan(&n.ID, &n.Code); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	n.CreatedAt = now
	return nil
}

func (r *notificationRepo) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id, notification_code, user_id, sender_id, title, description,
		notification_type, image_url, is_read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Code, &n.UserID, &n.SenderID, &n.Title, &n.Description,
			&n.Type, &n.ImageURL, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND id = ANY($2) AND is_read = FALSE`, userID, ids)
	return err
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&n)
	return n, err
}

func (r *notificationRepo) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
