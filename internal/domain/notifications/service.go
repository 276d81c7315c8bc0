package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type StoreAPI interface {
	CreateNotification(ctx context.Context, tenantID, userID, ntype, title, body string) error
	ListNotifications(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, tenantID, userID string) (int, error)
	MarkRead(ctx context.Context, tenantID, userID, notificationID string) error
	UserEmail(ctx context.Context, tenantID, userID string) (string, error)
	EmailSettings(ctx context.Context, tenantID string) (bool, string, error)
}

type Service struct {
	store       StoreAPI
	mailer      Mailer
	defaultFrom string
	logger      *slog.Logger
}

func New(store StoreAPI, mailer Mailer, defaultFrom string, logger *slog.Logger) *Service {
	return &Service{store: store, mailer: mailer, defaultFrom: defaultFrom, logger: logger}
}

// Notify stores an in-app notification and, when the tenant has email
// delivery enabled, mirrors it to the user's inbox. Delivery failures
// are logged, never surfaced to the caller.
func (s *Service) Notify(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, tenantID, userID, ntype, title, body); err != nil {
		return err
	}
	if s.mailer == nil {
		return nil
	}

	enabled, from, err := s.store.EmailSettings(ctx, tenantID)
	if err != nil || !enabled {
		return nil
	}
	if from == "" {
		from = s.defaultFrom
	}

	email, err := s.store.UserEmail(ctx, tenantID, userID)
	if err != nil || email == "" {
		if err != nil {
			s.logger.Warn("notification email lookup failed", "error", err)
		}
		return nil
	}
	if err := s.mailer.Send(ctx, from, email, title, body); err != nil {
		s.logger.Warn("notification email send failed", "error", err)
	}
	return nil
}

// NotifyAll fans a notification out to a set of users, typically the
// tenant's managers.
func (s *Service) NotifyAll(ctx context.Context, tenantID string, userIDs []string, ntype, title, body string) {
	for _, id := range userIDs {
		if err := s.Notify(ctx, tenantID, id, ntype, title, body); err != nil {
			s.logger.Warn("notification create failed", "userId", id, "error", err)
		}
	}
}

func (s *Service) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListNotifications(ctx, tenantID, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.CountUnread(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}
