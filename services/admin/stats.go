package admin

import (
	"context"

	"fixerhub/apperrors"
	"fixerhub/models"
	"fixerhub/services/tasks"
	"fixerhub/utils"

	"go.uber.org/zap"
)

func (a *DefaultAdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	users, err := a.Users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := a.Bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	certs, err := a.Certifications.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	disputes, err := a.Disputes.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &models.PlatformStats{
		UsersByRole:            users,
		BookingsByStatus:       bookings,
		CertificationsByStatus: certs,
		DisputesByStatus:       disputes,
	}, nil
}

func (a *DefaultAdminService) TriggerReconcile(ctx context.Context) (string, error) {
	if a.Queue == nil {
		return "", apperrors.New(apperrors.KindInternal, "task queue is not configured")
	}
	info, err := a.Queue.Enqueue(tasks.NewReconcileTask())
	if err != nil {
		if tasks.IsDuplicate(err) {
			return "", apperrors.Conflict("a reconciliation is already queued")
		}
		utils.GetLogger().Error("failed to enqueue reconciliation", zap.Error(err))
		return "", apperrors.Internal("failed to queue reconciliation", err)
	}
	return info.ID, nil
}
