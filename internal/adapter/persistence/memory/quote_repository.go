package memory

import (
	"context"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/juju/errors"
)

type QuoteRepository struct {
	s *Store
}

var _ interfaces.IQuoteRepository = (*QuoteRepository)(nil)

func (r *QuoteRepository) CreateForBooking(_ context.Context, q entities.Quote) (entities.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[q.BookingID]
	if !ok || b.Status != entities.BookingStatusConfirmed || b.ActiveQuoteID != "" {
		return entities.Quote{}, interfaces.ErrStaleWrite
	}
	if _, exists := r.s.quotes[q.ID]; exists {
		return entities.Quote{}, errors.AlreadyExistsf("quote %s", q.ID)
	}
	b.ActiveQuoteID = q.ID
	r.s.bookings[b.ID] = b
	r.s.quotes[q.ID] = q
	r.s.quoteByBooking[q.BookingID] = q.ID
	return q, nil
}

func (r *QuoteRepository) GetByID(_ context.Context, id string) (entities.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.quotes[id], nil
}

func (r *QuoteRepository) GetByBookingID(_ context.Context, bookingID string) (entities.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.quoteByBooking[bookingID]
	if !ok {
		return entities.Quote{}, nil
	}
	return r.s.quotes[id], nil
}

func (r *QuoteRepository) ApproveWithBilling(_ context.Context, quoteID string, billing entities.Billing, at time.Time) (entities.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[quoteID]
	if !ok || q.Status != entities.QuoteStatusPending {
		return entities.Quote{}, interfaces.ErrStaleWrite
	}
	if _, exists := r.s.billingByQuote[quoteID]; exists {
		return entities.Quote{}, interfaces.ErrStaleWrite
	}
	q.Status = entities.QuoteStatusApproved
	q.UpdatedAt = at
	r.s.quotes[q.ID] = q
	r.s.billings[billing.ID] = copyBilling(billing)
	r.s.billingByQuote[quoteID] = billing.ID
	return q, nil
}

func (r *QuoteRepository) DeletePending(_ context.Context, q entities.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.quotes[q.ID]
	if !ok || cur.Status != entities.QuoteStatusPending {
		return interfaces.ErrStaleWrite
	}
	delete(r.s.quotes, q.ID)
	if r.s.quoteByBooking[cur.BookingID] == q.ID {
		delete(r.s.quoteByBooking, cur.BookingID)
	}
	if b, ok := r.s.bookings[cur.BookingID]; ok && b.ActiveQuoteID == q.ID {
		b.ActiveQuoteID = ""
		r.s.bookings[b.ID] = b
	}
	return nil
}
