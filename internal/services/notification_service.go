package services

import (
	"context"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
)

type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo}
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	return s.repo.FindByUser(ctx, userID, limit)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// NotifyAdmins fans one notification out to every admin of the company.
func (s *NotificationService) NotifyAdmins(ctx context.Context, companyID uint, title, message, notifType string) error {
	admins, err := s.userRepo.FindAdmins(ctx, companyID)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		t := notifType
		notification := &models.Notification{
			UserID:           admin.ID,
			Title:            title,
			Message:          message,
			NotificationType: &t,
		}
		s.repo.Create(ctx, notification)
	}
	return nil
}
