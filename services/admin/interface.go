package admin

import (
	"context"

	bookingRepo "fixerhub/database/repository/booking"
	certificationRepo "fixerhub/database/repository/certification"
	disputeRepo "fixerhub/database/repository/dispute"
	userRepo "fixerhub/database/repository/user"
	"fixerhub/models"
	"fixerhub/services/tasks"
)

type AdminService interface {
	Stats(ctx context.Context) (*models.PlatformStats, error)
	// TriggerReconcile queues a certification score reconciliation.
	TriggerReconcile(ctx context.Context) (string, error)
	GetLegalSections() []models.LegalSection
	GetLegalSectionsFor(role models.Role) []models.LegalSection
}

type DefaultAdminService struct {
	Users          userRepo.UserRepository
	Bookings       bookingRepo.BookingRepository
	Certifications certificationRepo.CertificationRepository
	Disputes       disputeRepo.DisputeRepository
	Queue          tasks.Enqueuer
}
