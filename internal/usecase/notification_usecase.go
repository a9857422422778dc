package usecase

import (
	"context"
	"strings"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/logger"
)

type notificationUsecase struct {
	repo     domain.NotificationRepository
	userRepo domain.UserRepository
	push     domain.PushSender
}

func NewNotificationUsecase(repo domain.NotificationRepository, userRepo domain.UserRepository, push domain.PushSender) domain.NotificationUsecase {
	return &notificationUsecase{repo: repo, userRepo: userRepo, push: push}
}

// ListNotifications returns one page newest first and marks the unread
// ones on it as read.
func (u *notificationUsecase) ListNotifications(ctx context.Context, userID int64, page, limit int) ([]domain.Notification, domain.Pagination, error) {
	page, limit = domain.NormalizePage(page, limit)
	items, total, err := u.repo.ListForUser(ctx, userID, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if items == nil {
		items = []domain.Notification{}
	}

	var unread []int64
	for _, n := range items {
		if !n.IsRead {
			unread = append(unread, n.ID)
		}
	}
	if len(unread) > 0 {
		if err := u.repo.MarkRead(ctx, userID, unread); err != nil {
			return nil, domain.Pagination{}, err
		}
	}
	return items, domain.NewPagination(page, limit, total), nil
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return u.repo.CountUnread(ctx, userID)
}

func (u *notificationUsecase) Send(ctx context.Context, senderID int64, input domain.SendNotificationInput) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:      input.ReceiverID,
		SenderID:    &senderID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Message),
		Type:        strings.TrimSpace(input.Type),
		ImageURL:    input.ImageURL,
	}
	if err := u.deliver(ctx, n); err != nil {
		return nil, notFoundAs(err, "Receiver not found")
	}
	return n, nil
}

func (u *notificationUsecase) Notify(ctx context.Context, userID int64, title, message, notificationType string) error {
	return u.deliver(ctx, &domain.Notification{
		UserID:      userID,
		Title:       title,
		Description: message,
		Type:        notificationType,
	})
}

// deliver stores n and pushes it to the receiver's device when they opted in.
func (u *notificationUsecase) deliver(ctx context.Context, n *domain.Notification) error {
	if err := u.repo.Create(ctx, n); err != nil {
		return err
	}
	if u.push == nil {
		return nil
	}

	receiver, err := u.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		logger.Log.Warn("push skipped, receiver lookup failed", "user_id", n.UserID, "error", err)
		return nil
	}
	if !receiver.NotificationStatus || receiver.FCMToken == nil || *receiver.FCMToken == "" {
		return nil
	}

	data := map[string]string{
		"notification_id":   n.Code,
		"notification_type": n.Type,
	}
	if err := u.push.Send(ctx, *receiver.FCMToken, n.Title, n.Description, data); err != nil {
		logger.Log.Warn("push delivery failed", "user_id", n.UserID, "notification_id", n.Code, "error", err)
	}
	return nil
}
