package interfaces

import (
	"context"
	"time"

	"mecanica_booking/internal/domain/entities"
)

// IQuoteRepository abstracts persistence for Quote.
//
// The booking-service must be able to:
//   - create a quote and mark it as the booking's active quote in one write
//   - approve a pending quote and create its billing in one write
//   - withdraw a pending quote and release the booking's active quote slot
type IQuoteRepository interface {
	// CreateForBooking fails with ErrStaleWrite when the booking is not CONFIRMED
	// or already has an active quote.
	CreateForBooking(ctx context.Context, q entities.Quote) (entities.Quote, error)
	GetByID(ctx context.Context, id string) (entities.Quote, error)
	GetByBookingID(ctx context.Context, bookingID string) (entities.Quote, error)
	// ApproveWithBilling fails with ErrStaleWrite when the quote is no longer PENDING.
	ApproveWithBilling(ctx context.Context, quoteID string, billing entities.Billing, at time.Time) (entities.Quote, error)
	// DeletePending fails with ErrStaleWrite when the quote is no longer PENDING.
	DeletePending(ctx context.Context, q entities.Quote) error
}
