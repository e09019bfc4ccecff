package interfaces

import (
	"context"
	"errors"
	"time"

	"mecanica_booking/internal/domain/entities"
)

// ErrStaleWrite is returned by conditional writes whose precondition no longer
// holds (record missing, status or version changed under us).
var ErrStaleWrite = errors.New("stale write")

// BookingFilter narrows booking listings. Empty fields do not filter.
type BookingFilter struct {
	CustomerID   string
	TechnicianID string
	Status       entities.BookingStatus
}

// IBookingRepository abstracts persistence for Booking.
//
// Lookups return a zero-value Booking when the record does not exist.
// Writes that mutate an existing booking are conditional on expectedVersion
// and return ErrStaleWrite when it does not match.
type IBookingRepository interface {
	Create(ctx context.Context, b entities.Booking) (entities.Booking, error)
	GetByID(ctx context.Context, id string) (entities.Booking, error)
	Update(ctx context.Context, b entities.Booking, expectedVersion int64) (entities.Booking, error)
	// ConfirmWithJob stores the confirmed booking and its job in one atomic write.
	ConfirmWithJob(ctx context.Context, b entities.Booking, expectedVersion int64, job entities.Job) error
	// ListActiveByTechnician returns PENDING/CONFIRMED bookings of a technician scheduled in [from, to].
	ListActiveByTechnician(ctx context.Context, technicianID string, from, to time.Time) ([]entities.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]entities.Booking, error)
}
