package memory

import (
	"context"
	"sort"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/juju/errors"
)

type BookingRepository struct {
	s *Store
}

var _ interfaces.IBookingRepository = (*BookingRepository)(nil)

func (r *BookingRepository) Create(_ context.Context, b entities.Booking) (entities.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[b.ID]; ok {
		return entities.Booking{}, errors.AlreadyExistsf("booking %s", b.ID)
	}
	r.s.bookings[b.ID] = b
	return b, nil
}

func (r *BookingRepository) GetByID(_ context.Context, id string) (entities.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.bookings[id], nil
}

func (r *BookingRepository) Update(_ context.Context, b entities.Booking, expectedVersion int64) (entities.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.bookings[b.ID]
	if !ok || cur.Version != expectedVersion {
		return entities.Booking{}, interfaces.ErrStaleWrite
	}
	// The active quote pointer is owned by the quote repository.
	b.ActiveQuoteID = cur.ActiveQuoteID
	b.Version = expectedVersion + 1
	r.s.bookings[b.ID] = b
	return b, nil
}

func (r *BookingRepository) ConfirmWithJob(_ context.Context, b entities.Booking, expectedVersion int64, job entities.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.bookings[b.ID]
	if !ok || cur.Version != expectedVersion || cur.Status != entities.BookingStatusPending {
		return interfaces.ErrStaleWrite
	}
	if _, exists := r.s.jobByBooking[b.ID]; exists {
		return interfaces.ErrStaleWrite
	}
	b.ActiveQuoteID = cur.ActiveQuoteID
	b.Version = expectedVersion + 1
	r.s.bookings[b.ID] = b
	r.s.jobs[job.ID] = copyJob(job)
	r.s.jobByBooking[b.ID] = job.ID
	return nil
}

func (r *BookingRepository) ListActiveByTechnician(_ context.Context, technicianID string, from, to time.Time) ([]entities.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entities.Booking
	for _, b := range r.s.bookings {
		if b.TechnicianID != technicianID || !b.Status.Active() {
			continue
		}
		if b.ScheduledAt.Before(from) || b.ScheduledAt.After(to) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *BookingRepository) List(_ context.Context, f interfaces.BookingFilter) ([]entities.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entities.Booking{}
	for _, b := range r.s.bookings {
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		if f.TechnicianID != "" && b.TechnicianID != f.TechnicianID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
