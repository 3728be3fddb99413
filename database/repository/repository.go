package repository

import (
	bookingRepo "fixerhub/database/repository/booking"
	certificationRepo "fixerhub/database/repository/certification"
	disputeRepo "fixerhub/database/repository/dispute"
	paymentRepo "fixerhub/database/repository/payment"
	reviewRepo "fixerhub/database/repository/review"
	userRepo "fixerhub/database/repository/user"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces and constructors.
type UserRepository = userRepo.UserRepository

var NewMongoUserRepo = userRepo.NewMongoUserRepo

type BookingRepository = bookingRepo.BookingRepository

type BookingStatusChange = bookingRepo.StatusChange

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

type PaymentRepository = paymentRepo.PaymentRepository

type PaymentChange = paymentRepo.PaymentChange

var NewMongoPaymentRepo = paymentRepo.NewMongoPaymentRepo

type CertificationRepository = certificationRepo.CertificationRepository

var NewMongoCertificationRepo = certificationRepo.NewMongoCertificationRepo

type DisputeRepository = disputeRepo.DisputeRepository

var NewMongoDisputeRepo = disputeRepo.NewMongoDisputeRepo

type ReviewRepository = reviewRepo.ReviewRepository

var NewMongoReviewRepo = reviewRepo.NewMongoReviewRepo

// Repositories bundles every Mongo-backed repository.
type Repositories struct {
	Users          UserRepository
	Bookings       BookingRepository
	Payments       PaymentRepository
	Certifications CertificationRepository
	Disputes       DisputeRepository
	Reviews        ReviewRepository
}

func NewMongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Users:          NewMongoUserRepo(db),
		Bookings:       NewMongoBookingRepo(db),
		Payments:       NewMongoPaymentRepo(db),
		Certifications: NewMongoCertificationRepo(db),
		Disputes:       NewMongoDisputeRepo(db),
		Reviews:        NewMongoReviewRepo(db),
	}
}
