// Package memory keeps every repository in process memory. Guarded writes follow the same
// rules as the Mongo implementations, so services behave identically against either.
package memory

import (
	"sync"

	"fixerhub/database/repository"
	"fixerhub/models"
)

// Store is the shared state behind the in-memory repositories. One mutex covers every
// collection, which gives certification reviews the same all-or-nothing effect as a transaction.
type Store struct {
	mu             sync.Mutex
	users          map[string]*models.User
	bookings       map[string]*models.Booking
	payments       map[string]*models.Payment
	certifications map[string]*models.Certification
	disputes       map[string]*models.Dispute
	reviews        map[string]*models.Review
}

func NewStore() *Store {
	return &Store{
		users:          map[string]*models.User{},
		bookings:       map[string]*models.Booking{},
		payments:       map[string]*models.Payment{},
		certifications: map[string]*models.Certification{},
		disputes:       map[string]*models.Dispute{},
		reviews:        map[string]*models.Review{},
	}
}

// Repositories returns every repository backed by s.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:          &UserRepo{s},
		Bookings:       &BookingRepo{s},
		Payments:       &PaymentRepo{s},
		Certifications: &CertificationRepo{s},
		Disputes:       &DisputeRepo{s},
		Reviews:        &ReviewRepo{s},
	}
}

func page[T any](items []T, limit, skip int64) []T {
	if skip > 0 {
		if skip >= int64(len(items)) {
			return []T{}
		}
		items = items[skip:]
	}
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	return items
}
