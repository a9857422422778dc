package domain

import (
	"context"
	"time"
)

const (
	NotificationTypeReview  = "review"
	NotificationTypeGeneral = "general"
)

type Notification struct {
	ID          int64     `json:"-"`
	Code        string    `json:"notification_id"`
	UserID      int64     `json:"-"`
	SenderID    *int64    `json:"sender_id"`
	Title       string    `json:"title"`
	Description string    `json:"message"`
	Type        string    `json:"notification_type"`
	ImageURL    *string   `json:"image_url"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type SendNotificationInput struct {
	ReceiverID int64   `json:"receiver_id" binding:"required,gt=0"`
	Title      string  `json:"title" binding:"required,max=150"`
	Message    string  `json:"message" binding:"required,max=1000"`
	Type       string  `json:"notification_type" binding:"required,max=50"`
	ImageURL   *string `json:"image_url" binding:"omitempty,url"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]Notification, int64, error)
	MarkRead(ctx context.Context, userID int64, ids []int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
	PurgeRead(ctx context.Context, before time.Time) (int64, error)
}

// PushSender delivers a push message to one device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// Notifier records an in-app notification and pushes it when possible.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message, notificationType string) error
}

type NotificationUsecase interface {
	Notifier
	ListNotifications(ctx context.Context, userID int64, page, limit int) ([]Notification, Pagination, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	Send(ctx context.Context, senderID int64, input SendNotificationInput) (*Notification, error)
}
