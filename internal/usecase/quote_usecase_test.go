package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"
	mock_interfaces "mecanica_booking/internal/usecase/interfaces/mocks"

	"github.com/juju/clock/testclock"
	"go.uber.org/mock/gomock"
)

var quoteNow = time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC)

func confirmedBooking() entities.Booking {
	return entities.Booking{ID: "b-1", CustomerID: "cust-1", Status: entities.BookingStatusConfirmed, Version: 2}
}

func pendingQuote() entities.Quote {
	return entities.Quote{ID: "q-1", BookingID: "b-1", CustomerID: "cust-1", Total: 1000, Status: entities.QuoteStatusPending}
}

func newQuoteUseCase(ctrl *gomock.Controller) (*QuoteUseCase, *mock_interfaces.MockIQuoteRepository, *mock_interfaces.MockIBookingRepository) {
	repo := mock_interfaces.NewMockIQuoteRepository(ctrl)
	bookings := mock_interfaces.NewMockIBookingRepository(ctrl)
	return NewQuoteUseCase(repo, bookings, testclock.NewClock(quoteNow), nil), repo, bookings
}

func TestQuoteUseCase_Propose(t *testing.T) {
	t.Run("amount must be positive", func(t *testing.T) {
		uc := NewQuoteUseCase(nil, nil, nil, nil)
		_, err := uc.Propose(context.Background(), "b-1", 0)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("booking not confirmed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, _, bookings := newQuoteUseCase(ctrl)
		b := confirmedBooking()
		b.Status = entities.BookingStatusPending
		bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(b, nil)

		_, err := uc.Propose(context.Background(), "b-1", 1000)
		if !errors.Is(err, ErrBookingNotConfirmed) || !errors.Is(err, ErrPolicyViolation) {
			t.Fatalf("expected ErrBookingNotConfirmed, got %v", err)
		}
	})

	t.Run("active quote exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, _, bookings := newQuoteUseCase(ctrl)
		b := confirmedBooking()
		b.ActiveQuoteID = "q-0"
		bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(b, nil)

		_, err := uc.Propose(context.Background(), "b-1", 1000)
		if !errors.Is(err, ErrQuoteAlreadyExists) {
			t.Fatalf("expected ErrQuoteAlreadyExists, got %v", err)
		}
	})

	t.Run("copies the customer from the booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, repo, bookings := newQuoteUseCase(ctrl)
		bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(confirmedBooking(), nil)
		repo.EXPECT().CreateForBooking(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q entities.Quote) (entities.Quote, error) {
			return q, nil
		})

		q, err := uc.Propose(context.Background(), "b-1", 1000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.CustomerID != "cust-1" || q.Status != entities.QuoteStatusPending || q.Total != 1000 || !q.CreatedAt.Equal(quoteNow) {
			t.Fatalf("unexpected quote: %+v", q)
		}
	})

	t.Run("lost race against another quote", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, repo, bookings := newQuoteUseCase(ctrl)
		claimed := confirmedBooking()
		claimed.ActiveQuoteID = "q-other"
		gomock.InOrder(
			bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(confirmedBooking(), nil),
			repo.EXPECT().CreateForBooking(gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ErrStaleWrite),
			bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(claimed, nil),
		)

		_, err := uc.Propose(context.Background(), "b-1", 1000)
		if !errors.Is(err, ErrQuoteAlreadyExists) {
			t.Fatalf("expected ErrQuoteAlreadyExists, got %v", err)
		}
	})
}

func TestQuoteUseCase_Approve(t *testing.T) {
	t.Run("quote not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, repo, _ := newQuoteUseCase(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), "q-1").Return(entities.Quote{}, nil)

		_, _, err := uc.Approve(context.Background(), "q-1")
		if !errors.Is(err, ErrQuoteNotFound) {
			t.Fatalf("expected ErrQuoteNotFound, got %v", err)
		}
	})

	t.Run("already approved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, repo, _ := newQuoteUseCase(ctrl)
		q := pendingQuote()
		q.Status = entities.QuoteStatusApproved
		repo.EXPECT().GetByID(gomock.Any(), "q-1").Return(q, nil)

		_, _, err := uc.Approve(context.Background(), "q-1")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("creates an unpaid billing with the quote total", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, repo, bookings := newQuoteUseCase(ctrl)
		approved := pendingQuote()
		approved.Status = entities.QuoteStatusApproved
		repo.EXPECT().GetByID(gomock.Any(), "q-1").Return(pendingQuote(), nil)
		bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(confirmedBooking(), nil)
		repo.EXPECT().ApproveWithBilling(gomock.Any(), "q-1", gomock.Any(), quoteNow).Return(approved, nil)

		q, billing, err := uc.Approve(context.Background(), "q-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Status != entities.QuoteStatusApproved {
			t.Fatalf("unexpected quote: %+v", q)
		}
		if billing.Total != 1000 || billing.Status != entities.BillingStatusUnpaid || billing.QuoteID != "q-1" || billing.CustomerID != "cust-1" {
			t.Fatalf("unexpected billing: %+v", billing)
		}
	})

	t.Run("approved concurrently", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, repo, bookings := newQuoteUseCase(ctrl)
		approved := pendingQuote()
		approved.Status = entities.QuoteStatusApproved
		gomock.InOrder(
			repo.EXPECT().GetByID(gomock.Any(), "q-1").Return(pendingQuote(), nil),
			bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(confirmedBooking(), nil),
			repo.EXPECT().ApproveWithBilling(gomock.Any(), "q-1", gomock.Any(), gomock.Any()).Return(entities.Quote{}, interfaces.ErrStaleWrite),
			repo.EXPECT().GetByID(gomock.Any(), "q-1").Return(approved, nil),
		)

		_, _, err := uc.Approve(context.Background(), "q-1")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestQuoteUseCase_Delete(t *testing.T) {
	t.Run("approved quotes stay", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, repo, _ := newQuoteUseCase(ctrl)
		q := pendingQuote()
		q.Status = entities.QuoteStatusApproved
		repo.EXPECT().GetByID(gomock.Any(), "q-1").Return(q, nil)

		if err := uc.Delete(context.Background(), "q-1"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("pending quote is withdrawn", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc, repo, _ := newQuoteUseCase(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), "q-1").Return(pendingQuote(), nil)
		repo.EXPECT().DeletePending(gomock.Any(), pendingQuote()).Return(nil)

		if err := uc.Delete(context.Background(), "q-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
