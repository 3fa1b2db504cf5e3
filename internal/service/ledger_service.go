package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/Jayasrip08/apec-digital-no-dues/internal/models"
	appErrors "github.com/Jayasrip08/apec-digital-no-dues/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id string) error
}

// LedgerService records every delivery attempt and serves the history API.
// The ledger is for audit and the client's notification inbox, never for
// delivery decisions.
type LedgerService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewLedgerService constructs the ledger service.
func NewLedgerService(repo notificationRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{repo: repo, logger: logger}
}

// Record appends one entry. Read always starts false.
func (s *LedgerService) Record(ctx context.Context, n *models.Notification) error {
	n.Read = false
	if err := s.repo.Create(ctx, n); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record notification")
	}
	return nil
}

// History returns a page of the user's notifications, newest first.
func (s *LedgerService) History(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	notifications, total, err := s.repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return notifications, pagination, nil
}

// MarkRead flips the read flag for the client inbox.
func (s *LedgerService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
