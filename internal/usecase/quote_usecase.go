package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/juju/clock"
	log "github.com/sirupsen/logrus"
)

// IQuoteUseCase exposes the quote side of the money flow.
//
//   - Propose: staff prices a CONFIRMED booking (one active quote per booking)
//   - Approve: customer accepts; the billing is created with the quote total
//   - Delete: the quote is withdrawn while still PENDING
//
// Quotes are not gated by the job stage.
type IQuoteUseCase interface {
	Propose(ctx context.Context, bookingID string, amount float64) (entities.Quote, error)
	Approve(ctx context.Context, quoteID string) (entities.Quote, entities.Billing, error)
	Delete(ctx context.Context, quoteID string) error
	GetByID(ctx context.Context, id string) (entities.Quote, error)
	GetByBookingID(ctx context.Context, bookingID string) (entities.Quote, error)
}

type QuoteUseCase struct {
	repo        interfaces.IQuoteRepository
	bookingRepo interfaces.IBookingRepository
	clock       clock.Clock
	observer    interfaces.IWorkflowObserver
}

var _ IQuoteUseCase = (*QuoteUseCase)(nil)

func NewQuoteUseCase(repo interfaces.IQuoteRepository, bookingRepo interfaces.IBookingRepository, clk clock.Clock, observer interfaces.IWorkflowObserver) *QuoteUseCase {
	if clk == nil {
		clk = clock.WallClock
	}
	return &QuoteUseCase{repo: repo, bookingRepo: bookingRepo, clock: clk, observer: observerOrNoop(observer)}
}

func (u *QuoteUseCase) Propose(ctx context.Context, bookingID string, amount float64) (entities.Quote, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return entities.Quote{}, ErrInvalidID
	}
	if amount <= 0 {
		return entities.Quote{}, ErrInvalidAmount
	}

	b, err := u.loadBooking(ctx, bookingID)
	if err != nil {
		return entities.Quote{}, err
	}
	if err := quotable(b); err != nil {
		return entities.Quote{}, err
	}

	now := u.clock.Now().UTC()
	q := entities.Quote{
		ID:         uuid.NewString(),
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		Total:      amount,
		Status:     entities.QuoteStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := u.repo.CreateForBooking(ctx, q)
	if err != nil {
		if !errors.Is(err, interfaces.ErrStaleWrite) {
			return entities.Quote{}, annotate(err, "creating quote for booking %s", bookingID)
		}
		cur, loadErr := u.loadBooking(ctx, bookingID)
		if loadErr != nil {
			return entities.Quote{}, loadErr
		}
		if err := quotable(cur); err != nil {
			return entities.Quote{}, err
		}
		return entities.Quote{}, ErrConcurrentUpdate
	}

	u.observer.ObserveTransition("quote", "propose")
	log.WithFields(log.Fields{"quote_id": created.ID, "booking_id": bookingID, "total": created.Total}).Info("[quote][usecase] propose success")
	return created, nil
}

// Approve marks a PENDING quote APPROVED and creates its UNPAID billing in the
// same write, freezing the quote total into the billing.
func (u *QuoteUseCase) Approve(ctx context.Context, quoteID string) (entities.Quote, entities.Billing, error) {
	q, err := u.GetByID(ctx, quoteID)
	if err != nil {
		return entities.Quote{}, entities.Billing{}, err
	}
	if q.Status != entities.QuoteStatusPending {
		return entities.Quote{}, entities.Billing{}, quoteStateError(q.Status)
	}

	b, err := u.loadBooking(ctx, q.BookingID)
	if err != nil {
		return entities.Quote{}, entities.Billing{}, err
	}

	now := u.clock.Now().UTC()
	billing := entities.Billing{
		ID:         uuid.NewString(),
		QuoteID:    q.ID,
		BookingID:  q.BookingID,
		CustomerID: b.CustomerID,
		Total:      q.Total,
		Status:     entities.BillingStatusUnpaid,
		CreatedAt:  now,
	}
	approved, err := u.repo.ApproveWithBilling(ctx, q.ID, billing, now)
	if err != nil {
		return entities.Quote{}, entities.Billing{}, u.writeError(ctx, err, q.ID)
	}

	u.observer.ObserveTransition("quote", "approve")
	log.WithFields(log.Fields{"quote_id": q.ID, "billing_id": billing.ID, "total": billing.Total}).Info("[quote][usecase] approve success")
	return approved, billing, nil
}

func (u *QuoteUseCase) Delete(ctx context.Context, quoteID string) error {
	q, err := u.GetByID(ctx, quoteID)
	if err != nil {
		return err
	}
	if !q.Deletable() {
		return quoteStateError(q.Status)
	}
	if err := u.repo.DeletePending(ctx, q); err != nil {
		return u.writeError(ctx, err, q.ID)
	}

	u.observer.ObserveTransition("quote", "delete")
	log.WithFields(log.Fields{"quote_id": q.ID, "booking_id": q.BookingID}).Info("[quote][usecase] delete success")
	return nil
}

func (u *QuoteUseCase) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Quote{}, ErrInvalidID
	}
	q, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Quote{}, annotate(err, "loading quote %s", id)
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

func (u *QuoteUseCase) GetByBookingID(ctx context.Context, bookingID string) (entities.Quote, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return entities.Quote{}, ErrInvalidID
	}
	q, err := u.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return entities.Quote{}, annotate(err, "loading quote of booking %s", bookingID)
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

func (u *QuoteUseCase) loadBooking(ctx context.Context, id string) (entities.Booking, error) {
	b, err := u.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return entities.Booking{}, annotate(err, "loading booking %s", id)
	}
	if b.ID == "" {
		return entities.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (u *QuoteUseCase) writeError(ctx context.Context, err error, quoteID string) error {
	if !errors.Is(err, interfaces.ErrStaleWrite) {
		return annotate(err, "writing quote %s", quoteID)
	}
	cur, loadErr := u.GetByID(ctx, quoteID)
	if loadErr != nil {
		return loadErr
	}
	if cur.Status != entities.QuoteStatusPending {
		return quoteStateError(cur.Status)
	}
	return ErrConcurrentUpdate
}

func quotable(b entities.Booking) error {
	if b.Status != entities.BookingStatusConfirmed {
		return ErrBookingNotConfirmed
	}
	if b.ActiveQuoteID != "" {
		return ErrQuoteAlreadyExists
	}
	return nil
}

func quoteStateError(status entities.QuoteStatus) error {
	return fmt.Errorf("quote is %s: %w", status, ErrInvalidTransition)
}
