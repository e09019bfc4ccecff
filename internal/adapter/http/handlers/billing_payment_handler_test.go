package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mecanica_booking/internal/adapter/http/handlers/mocks"
	"mecanica_booking/internal/adapter/http/middleware"
	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock/testclock"
	"go.uber.org/mock/gomock"
)

type failingReadCloser struct{}

func (failingReadCloser) Read(_ []byte) (int, error) { return 0, errors.New("read error") }
func (failingReadCloser) Close() error               { return nil }

var (
	handlerNow = time.Date(2024, 5, 3, 17, 30, 0, 0, time.UTC)
	unpaid     = entities.Billing{ID: "bill-1", QuoteID: "q-1", BookingID: "b-1", CustomerID: "cust-1", Total: 1000, Status: entities.BillingStatusUnpaid}
)

func newBillingRouter(t *testing.T, p middleware.Principal, mockMode bool) (*gin.Engine, *mocks.MockIBillingPaymentUseCase) {
	r, uc, _ := newBillingRouterWithBookings(t, p, mockMode)
	return r, uc
}

func newBillingRouterWithBookings(t *testing.T, p middleware.Principal, mockMode bool) (*gin.Engine, *mocks.MockIBillingPaymentUseCase, *mocks.MockIBookingUseCase) {
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIBillingPaymentUseCase(ctrl)
	bookings := mocks.NewMockIBookingUseCase(ctrl)
	h := NewBillingPaymentHandler(uc, bookings, testclock.NewClock(handlerNow), mockMode)

	r := newTestRouter(p)
	r.GET("/v1/billings/:id", h.GetBilling)
	r.GET("/v1/quotes/:id/billing", h.GetBillingByQuote)
	r.POST("/v1/billings/:id/payments", h.RecordPayment)
	r.POST("/v1/billings/:id/checkout", h.Checkout)
	r.GET("/v1/billings/:id/payment", h.GetPayment)
	r.GET("/v1/billings/:id/invoice", h.Invoice)
	return r, uc, bookings
}

func TestBillingPaymentHandler_RecordPayment(t *testing.T) {
	paid := unpaid
	paid.Status = entities.BillingStatusPaid

	t.Run("defaults paid_at to now", func(t *testing.T) {
		r, uc := newBillingRouter(t, asAdmin, false)
		uc.EXPECT().RecordPayment(gomock.Any(), "bill-1", 1000.0, handlerNow).
			Return(paid, entities.Payment{ID: "pay-1", BillingID: "bill-1", Amount: 1000, PaidAt: handlerNow}, nil)

		w := serve(r, http.MethodPost, "/v1/billings/bill-1/payments", `{"amount":1000}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
		billing, _ := decode(t, w)["billing"].(map[string]any)
		if billing["status"] != "PAID" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("explicit paid_at", func(t *testing.T) {
		r, uc := newBillingRouter(t, asAdmin, false)
		at := time.Date(2024, 5, 3, 20, 30, 0, 0, time.UTC)
		uc.EXPECT().RecordPayment(gomock.Any(), "bill-1", 1000.0, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, _ float64, got time.Time) (entities.Billing, entities.Payment, error) {
				if !got.Equal(at) {
					t.Fatalf("expected paid_at %s, got %s", at, got)
				}
				return paid, entities.Payment{ID: "pay-1"}, nil
			})
		if w := serve(r, http.MethodPost, "/v1/billings/bill-1/payments", `{"amount":1000,"paid_at":"2024-05-03T17:30:00-03:00"}`); w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	})

	t.Run("bad paid_at", func(t *testing.T) {
		r, _ := newBillingRouter(t, asAdmin, false)
		if w := serve(r, http.MethodPost, "/v1/billings/bill-1/payments", `{"amount":1000,"paid_at":"yesterday"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("amount mismatch", func(t *testing.T) {
		r, uc := newBillingRouter(t, asAdmin, false)
		uc.EXPECT().RecordPayment(gomock.Any(), "bill-1", 999.0, handlerNow).Return(entities.Billing{}, entities.Payment{}, usecase.ErrPaymentAmountMismatch)
		if w := serve(r, http.MethodPost, "/v1/billings/bill-1/payments", `{"amount":999}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("already paid", func(t *testing.T) {
		r, uc := newBillingRouter(t, asAdmin, false)
		uc.EXPECT().RecordPayment(gomock.Any(), "bill-1", 1000.0, handlerNow).Return(entities.Billing{}, entities.Payment{}, usecase.ErrBillingAlreadyPaid)
		if w := serve(r, http.MethodPost, "/v1/billings/bill-1/payments", `{"amount":1000}`); w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})
}

func TestBillingPaymentHandler_Checkout(t *testing.T) {
	t.Run("invalid payload", func(t *testing.T) {
		r, uc := newBillingRouter(t, asCustomer, false)
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		if w := serve(r, http.MethodPost, "/v1/billings/bill-1/checkout", "{"); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid payload in mock mode falls back to empty", func(t *testing.T) {
		r, uc := newBillingRouter(t, asCustomer, true)
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		uc.EXPECT().Checkout(gomock.Any(), "bill-1", json.RawMessage("{}")).Return(unpaid, entities.Payment{ID: "pay-1"}, nil)
		if w := serve(r, http.MethodPost, "/v1/billings/bill-1/checkout", "{"); w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	})

	t.Run("not the owner", func(t *testing.T) {
		r, uc := newBillingRouter(t, asStranger, false)
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		if w := serve(r, http.MethodPost, "/v1/billings/bill-1/checkout", `{}`); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		r, uc := newBillingRouter(t, asCustomer, false)
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		uc.EXPECT().Checkout(gomock.Any(), "bill-1", gomock.Any()).Return(entities.Billing{}, entities.Payment{}, usecase.ErrPaymentGatewayInvalidUsers)
		w := serve(r, http.MethodPost, "/v1/billings/bill-1/checkout", `{"payment_method_id":"pix","payer":{"email":"x@test.com"}}`)
		if w.Code != http.StatusBadRequest || decode(t, w)["code"] != "PAYMENT_PROVIDER_INVALID_USERS" {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("success unwraps mp_payload", func(t *testing.T) {
		r, uc := newBillingRouter(t, asCustomer, false)
		paid := unpaid
		paid.Status = entities.BillingStatusPaid
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		uc.EXPECT().Checkout(gomock.Any(), "bill-1", json.RawMessage(`{"payment_method_id":"pix"}`)).Return(paid, entities.Payment{
			ID: "pay-1", BillingID: "bill-1", Amount: 1000, Provider: usecase.ProviderMercadoPago, ProviderPaymentID: "123",
			ProviderPayloadRaw: json.RawMessage(`{"id":123,"status":"approved"}`),
		}, nil)

		w := serve(r, http.MethodPost, "/v1/billings/bill-1/checkout", `{"mp_payload":{"payment_method_id":"pix"}}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		payment, _ := decode(t, w)["payment"].(map[string]any)
		if payment["payment_id"] != "pay-1" || payment["provider_payment_id"] != "123" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestBillingPaymentHandler_Reads(t *testing.T) {
	t.Run("billing by quote hidden from other customers", func(t *testing.T) {
		r, uc := newBillingRouter(t, asStranger, false)
		uc.EXPECT().GetBillingByQuoteID(gomock.Any(), "q-1").Return(unpaid, nil)
		if w := serve(r, http.MethodGet, "/v1/quotes/q-1/billing", ""); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("payment not found", func(t *testing.T) {
		r, uc := newBillingRouter(t, asCustomer, false)
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		uc.EXPECT().GetPaymentByBillingID(gomock.Any(), "bill-1").Return(entities.Payment{}, usecase.ErrPaymentNotFound)
		if w := serve(r, http.MethodGet, "/v1/billings/bill-1/payment", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("invoice", func(t *testing.T) {
		r, uc, bookings := newBillingRouterWithBookings(t, asTech, false)
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(entities.Booking{ID: "b-1", CustomerID: "cust-1", TechnicianID: "tech-1"}, nil)
		uc.EXPECT().RenderInvoice(gomock.Any(), "bill-1").Return([]byte("%PDF-1.3"), nil)
		w := serve(r, http.MethodGet, "/v1/billings/bill-1/invoice", "")
		if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
			t.Fatalf("unexpected response %d %v", w.Code, w.Header())
		}
		if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
			t.Fatalf("unexpected body %q", w.Body.String())
		}
	})
}

func TestBillingPaymentHandler_TechnicianAccess(t *testing.T) {
	t.Run("assigned technician", func(t *testing.T) {
		r, uc, bookings := newBillingRouterWithBookings(t, asTech, false)
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(entities.Booking{ID: "b-1", TechnicianID: "tech-1"}, nil)
		if w := serve(r, http.MethodGet, "/v1/billings/bill-1", ""); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("another technician's booking", func(t *testing.T) {
		r, uc, bookings := newBillingRouterWithBookings(t, asTech, false)
		uc.EXPECT().GetBillingByQuoteID(gomock.Any(), "q-1").Return(unpaid, nil)
		bookings.EXPECT().GetByID(gomock.Any(), "b-1").Return(entities.Booking{ID: "b-1", TechnicianID: "tech-2"}, nil)
		if w := serve(r, http.MethodGet, "/v1/quotes/q-1/billing", ""); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("admin skips the booking lookup", func(t *testing.T) {
		r, uc, _ := newBillingRouterWithBookings(t, asAdmin, false)
		uc.EXPECT().GetBillingByID(gomock.Any(), "bill-1").Return(unpaid, nil)
		if w := serve(r, http.MethodGet, "/v1/billings/bill-1", ""); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestReadMPPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	makeCtx := func(raw string) *gin.Context {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(raw))
		c.Request.Header.Set("Content-Type", "application/json")
		return c
	}

	ctxReadErr := makeCtx("{}")
	ctxReadErr.Request.Body = failingReadCloser{}
	if _, err := readMPPayload(ctxReadErr); err == nil {
		t.Fatalf("expected read body error")
	}

	if _, err := readMPPayload(makeCtx("{invalid")); err == nil {
		t.Fatalf("expected invalid json error")
	}

	payload, err := readMPPayload(makeCtx("   "))
	if err != nil || string(payload) != "{}" {
		t.Fatalf("expected {}, got payload=%s err=%v", string(payload), err)
	}

	if _, err := readMPPayload(makeCtx(`{"mp_payload":null}`)); err == nil {
		t.Fatalf("expected mp_payload empty error")
	}

	payload, err = readMPPayload(makeCtx(`{"mp_payload":"x"}`))
	if err != nil || string(payload) != `"x"` {
		t.Fatalf("expected wrapped string payload, got %s err=%v", payload, err)
	}

	payload, err = readMPPayload(makeCtx(`{"mp_payload":{"a":1}}`))
	if err != nil || string(payload) != `{"a":1}` {
		t.Fatalf("expected wrapped payload, got %s err=%v", payload, err)
	}

	payload, err = readMPPayload(makeCtx(`{"mp_payload":{"payment_method_id":"pix"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !json.Valid(payload) {
		t.Fatalf("expected valid payload")
	}

	payload, err = readMPPayload(makeCtx(`{"payment_method_id":"pix"}`))
	if err != nil || string(payload) != `{"payment_method_id":"pix"}` {
		t.Fatalf("expected raw body payload, got %s err=%v", payload, err)
	}
}

