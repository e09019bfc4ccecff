package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"
	mock_interfaces "mecanica_booking/internal/usecase/interfaces/mocks"

	"github.com/juju/clock/testclock"
	jujuerrors "github.com/juju/errors"
	"go.uber.org/mock/gomock"
)

var paymentNow = time.Date(2024, 5, 3, 14, 0, 0, 0, time.UTC)

func unpaidBilling() entities.Billing {
	return entities.Billing{ID: "bill-1", QuoteID: "q-1", BookingID: "b-1", CustomerID: "cust-1", Total: 1000, Status: entities.BillingStatusUnpaid, CreatedAt: paymentNow.Add(-time.Hour)}
}

type billingMocks struct {
	repo     *mock_interfaces.MockIBillingPaymentRepository
	bookings *mock_interfaces.MockIBookingRepository
	catalog  *mock_interfaces.MockICatalogRepository
	gateway  *mock_interfaces.MockIPaymentGateway
	renderer *mock_interfaces.MockIInvoiceRenderer
	locker   *mock_interfaces.MockISlotLocker
}

func newBillingMocks(ctrl *gomock.Controller) billingMocks {
	return billingMocks{
		repo:     mock_interfaces.NewMockIBillingPaymentRepository(ctrl),
		bookings: mock_interfaces.NewMockIBookingRepository(ctrl),
		catalog:  mock_interfaces.NewMockICatalogRepository(ctrl),
		gateway:  mock_interfaces.NewMockIPaymentGateway(ctrl),
		renderer: mock_interfaces.NewMockIInvoiceRenderer(ctrl),
		locker:   mock_interfaces.NewMockISlotLocker(ctrl),
	}
}

func (m billingMocks) useCase(settings PaymentSettings) *BillingPaymentUseCase {
	return NewBillingPaymentUseCase(m.repo, m.bookings, m.catalog, m.gateway, m.renderer, m.locker, testclock.NewClock(paymentNow), nil, settings)
}

func TestBillingPaymentUseCase_RecordPayment(t *testing.T) {
	t.Run("invalid arguments", func(t *testing.T) {
		uc := NewBillingPaymentUseCase(nil, nil, nil, nil, nil, nil, nil, nil, PaymentSettings{})
		if _, _, err := uc.RecordPayment(context.Background(), "bill-1", 0, paymentNow); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
		if _, _, err := uc.RecordPayment(context.Background(), "bill-1", 10, time.Time{}); !errors.Is(err, ErrInvalidPaidAt) {
			t.Fatalf("expected ErrInvalidPaidAt, got %v", err)
		}
		if _, _, err := uc.RecordPayment(context.Background(), " ", 10, paymentNow); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("billing not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(entities.Billing{}, nil)

		_, _, err := m.useCase(PaymentSettings{}).RecordPayment(context.Background(), "bill-1", 1000, paymentNow)
		if !errors.Is(err, ErrBillingNotFound) || !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrBillingNotFound, got %v", err)
		}
	})

	t.Run("already paid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		paid := unpaidBilling()
		paid.Status = entities.BillingStatusPaid
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(paid, nil)

		_, _, err := m.useCase(PaymentSettings{}).RecordPayment(context.Background(), "bill-1", 1000, paymentNow)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("amount mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil)

		_, _, err := m.useCase(PaymentSettings{}).RecordPayment(context.Background(), "bill-1", 999.99, paymentNow)
		if !errors.Is(err, ErrPaymentAmountMismatch) || !errors.Is(err, ErrPolicyViolation) {
			t.Fatalf("expected ErrPaymentAmountMismatch, got %v", err)
		}
	})

	t.Run("settles the billing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		settled := unpaidBilling()
		settled.Status = entities.BillingStatusPaid
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil)
		m.repo.EXPECT().SettleWithPayment(gomock.Any(), "bill-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, p entities.Payment) (entities.Billing, error) {
				if p.Amount != 1000 || p.BillingID != "bill-1" || p.Provider != "" {
					t.Fatalf("unexpected payment: %+v", p)
				}
				paidAt := p.PaidAt
				settled.PaidAt = &paidAt
				return settled, nil
			})

		b, p, err := m.useCase(PaymentSettings{}).RecordPayment(context.Background(), "bill-1", 1000.001, paymentNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.Paid() || p.ID == "" || !p.PaidAt.Equal(paymentNow) {
			t.Fatalf("unexpected result: %+v %+v", b, p)
		}
	})

	t.Run("lost race against another payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		paid := unpaidBilling()
		paid.Status = entities.BillingStatusPaid
		gomock.InOrder(
			m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil),
			m.repo.EXPECT().SettleWithPayment(gomock.Any(), "bill-1", gomock.Any()).Return(entities.Billing{}, interfaces.ErrStaleWrite),
			m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(paid, nil),
		)

		_, _, err := m.useCase(PaymentSettings{}).RecordPayment(context.Background(), "bill-1", 1000, paymentNow)
		if !errors.Is(err, ErrBillingAlreadyPaid) {
			t.Fatalf("expected ErrBillingAlreadyPaid, got %v", err)
		}
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		dbErr := errors.New("db")
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(entities.Billing{}, dbErr)

		_, _, err := m.useCase(PaymentSettings{}).RecordPayment(context.Background(), "bill-1", 1000, paymentNow)
		if !errors.Is(err, dbErr) || errors.Is(err, ErrNotFound) {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestBillingPaymentUseCase_Checkout_Validations(t *testing.T) {
	t.Run("gateway not configured", func(t *testing.T) {
		uc := NewBillingPaymentUseCase(nil, nil, nil, nil, nil, nil, nil, nil, PaymentSettings{})
		_, _, err := uc.Checkout(context.Background(), "bill-1", json.RawMessage(`{"payment_method_id":"pix"}`))
		if !errors.Is(err, ErrPaymentGatewayNotConfigured) {
			t.Fatalf("expected ErrPaymentGatewayNotConfigured, got %v", err)
		}
	})

	payloads := []struct {
		name    string
		payload json.RawMessage
	}{
		{name: "empty payload", payload: nil},
		{name: "invalid json payload", payload: json.RawMessage(`{`)},
		{name: "missing payment_method_id", payload: json.RawMessage(`{"payer":{"email":"x@test.com"}}`)},
		{name: "missing payer", payload: json.RawMessage(`{"payment_method_id":"pix"}`)},
	}
	for _, tc := range payloads {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := newBillingMocks(ctrl)
			m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil)

			_, _, err := m.useCase(PaymentSettings{AccessToken: "APP_USR-1"}).Checkout(context.Background(), "bill-1", tc.payload)
			if !errors.Is(err, ErrInvalidProviderReq) {
				t.Fatalf("expected ErrInvalidProviderReq, got %v", err)
			}
		})
	}

	t.Run("already paid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		paid := unpaidBilling()
		paid.Status = entities.BillingStatusPaid
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(paid, nil)

		_, _, err := m.useCase(PaymentSettings{}).Checkout(context.Background(), "bill-1", json.RawMessage(`{"payment_method_id":"pix","payer":{"email":"x@test.com"}}`))
		if !errors.Is(err, ErrBillingAlreadyPaid) {
			t.Fatalf("expected ErrBillingAlreadyPaid, got %v", err)
		}
	})

	t.Run("checkout already running", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil)
		m.locker.EXPECT().Acquire(gomock.Any(), "billing:bill-1").Return(nil, jujuerrors.Timeoutf("slot billing:bill-1"))

		_, _, err := m.useCase(PaymentSettings{MockMode: true}).Checkout(context.Background(), "bill-1", nil)
		if !errors.Is(err, ErrBusy) {
			t.Fatalf("expected ErrBusy, got %v", err)
		}
	})
}

func TestBillingPaymentUseCase_Checkout_GatewayErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "customer not found", err: errors.New(`{"code":2002}`), want: ErrPaymentGatewayCustomerNotFound},
		{name: "invalid users", err: errors.New(`invalid users involved`), want: ErrPaymentGatewayInvalidUsers},
		{name: "unauthorized", err: errors.New(`{"error":"unauthorized"}`), want: ErrPaymentGatewayUnauthorized},
		{name: "bad request", err: errors.New(`{"status":400}`), want: ErrPaymentGatewayBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := newBillingMocks(ctrl)
			m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil).Times(2)
			m.locker.EXPECT().Acquire(gomock.Any(), "billing:bill-1").Return(func() {}, nil)
			m.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil, tc.err)

			_, _, err := m.useCase(PaymentSettings{}).Checkout(context.Background(), "bill-1", json.RawMessage(`{"payment_method_id":"pix","payer":{"email":"x@test.com"}}`))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("unknown gateway error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil).Times(2)
		m.locker.EXPECT().Acquire(gomock.Any(), "billing:bill-1").Return(func() {}, nil)
		m.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil, errors.New("boom"))

		_, _, err := m.useCase(PaymentSettings{}).Checkout(context.Background(), "bill-1", json.RawMessage(`{"payment_method_id":"pix","payer":{"email":"x@test.com"}}`))
		if err == nil || err.Error() != "boom" {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("provider did not approve", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil).Times(2)
		m.locker.EXPECT().Acquire(gomock.Any(), "billing:bill-1").Return(func() {}, nil)
		m.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("mp-1", "rejected", json.RawMessage(`{"status":"rejected"}`), nil)

		_, _, err := m.useCase(PaymentSettings{}).Checkout(context.Background(), "bill-1", json.RawMessage(`{"payment_method_id":"pix","payer":{"email":"x@test.com"}}`))
		if !errors.Is(err, ErrPaymentNotApproved) {
			t.Fatalf("expected ErrPaymentNotApproved, got %v", err)
		}
	})
}

func TestBillingPaymentUseCase_Checkout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newBillingMocks(ctrl)
	released := false
	settled := unpaidBilling()
	settled.Status = entities.BillingStatusPaid

	m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil).Times(2)
	m.locker.EXPECT().Acquire(gomock.Any(), "billing:bill-1").Return(func() { released = true }, nil)
	m.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, payload json.RawMessage) (string, string, json.RawMessage, error) {
			var req map[string]any
			if err := json.Unmarshal(payload, &req); err != nil {
				t.Fatalf("payload is not json: %v", err)
			}
			if req["transaction_amount"] != float64(1000) {
				t.Fatalf("amount must come from the billing, got %v", req["transaction_amount"])
			}
			if req["external_reference"] != "bill-1" {
				t.Fatalf("unexpected external_reference %v", req["external_reference"])
			}
			payer := req["payer"].(map[string]any)
			if payer["email"] != "test_user_br@testuser.com" {
				t.Fatalf("expected sandbox payer email, got %v", payer["email"])
			}
			return "mp-123", "approved", json.RawMessage(`{"id":"mp-123","status":"approved"}`), nil
		})
	m.repo.EXPECT().SettleWithPayment(gomock.Any(), "bill-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, p entities.Payment) (entities.Billing, error) {
			if p.Provider != ProviderMercadoPago || p.ProviderPaymentID != "mp-123" || p.Amount != 1000 {
				t.Fatalf("unexpected payment: %+v", p)
			}
			return settled, nil
		})

	uc := m.useCase(PaymentSettings{AccessToken: "TEST-123"})
	b, p, err := uc.Checkout(context.Background(), "bill-1", json.RawMessage(`{"payment_method_id":"pix","transaction_amount":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Paid() || p.ProviderPaymentID != "mp-123" || !p.PaidAt.Equal(paymentNow) {
		t.Fatalf("unexpected result: %+v %+v", b, p)
	}
	if !released {
		t.Fatalf("billing lock must be released")
	}
}

func TestBillingPaymentUseCase_PreparePayload_SandboxPayerMapping(t *testing.T) {
	uc := NewBillingPaymentUseCase(nil, nil, nil, nil, nil, nil, nil, nil, PaymentSettings{
		AccessToken:     "TEST-123",
		TestPayerEmail:  "buyer@testuser.com",
		TestPayerUserID: "42",
	})

	out, err := uc.preparePayload(unpaidBilling(), json.RawMessage(`{"payment_method_id":"pix","payer":{"id":42}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var req map[string]any
	if err := json.Unmarshal(out, &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payer := req["payer"].(map[string]any)
	if payer["email"] != "buyer@testuser.com" {
		t.Fatalf("expected mapped email, got %v", payer)
	}
	if _, ok := payer["id"]; ok {
		t.Fatalf("payer id must be dropped once mapped")
	}
}

func TestBillingPaymentUseCase_RenderInvoice(t *testing.T) {
	t.Run("renderer not configured", func(t *testing.T) {
		uc := NewBillingPaymentUseCase(nil, nil, nil, nil, nil, nil, nil, nil, PaymentSettings{})
		if _, err := uc.RenderInvoice(context.Background(), "bill-1"); !errors.Is(err, ErrInvoiceRendererNotConfigured) {
			t.Fatalf("expected ErrInvoiceRendererNotConfigured, got %v", err)
		}
	})

	t.Run("renders billing with its payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := newBillingMocks(ctrl)
		booking := entities.Booking{ID: "b-1", CustomerID: "cust-1", CarID: "car-1", ServiceID: "svc-1"}
		m.repo.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaidBilling(), nil)
		m.repo.EXPECT().GetPaymentByBillingID(gomock.Any(), "bill-1").Return(entities.Payment{ID: "pay-1", Amount: 1000}, nil)
		m.bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(booking, nil)
		m.catalog.EXPECT().GetUser(gomock.Any(), "cust-1").Return(entities.User{ID: "cust-1", Name: "Maria"}, nil)
		m.catalog.EXPECT().GetService(gomock.Any(), "svc-1").Return(entities.Service{ID: "svc-1", Name: "Brakes"}, nil)
		m.catalog.EXPECT().GetCar(gomock.Any(), "car-1").Return(entities.Car{ID: "car-1", PlateNo: "ABC1D23"}, nil)
		m.renderer.EXPECT().Render(gomock.Any()).DoAndReturn(func(data interfaces.InvoiceData) ([]byte, error) {
			if data.Payment == nil || data.Payment.ID != "pay-1" || data.Customer.Name != "Maria" || data.Service.Name != "Brakes" {
				t.Fatalf("unexpected invoice data: %+v", data)
			}
			return []byte("%PDF-1.3"), nil
		})

		pdf, err := m.useCase(PaymentSettings{}).RenderInvoice(context.Background(), "bill-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(pdf) != "%PDF-1.3" {
			t.Fatalf("unexpected pdf %q", pdf)
		}
	})
}
