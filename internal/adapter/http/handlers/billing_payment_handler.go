package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"mecanica_booking/internal/adapter/http/dto/request"
	"mecanica_booking/internal/adapter/http/dto/response"
	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock"
	log "github.com/sirupsen/logrus"
)

// BillingPaymentHandler handles HTTP requests for billings and their payment.
type BillingPaymentHandler struct {
	usecase  usecase.IBillingPaymentUseCase
	bookings usecase.IBookingUseCase
	clock    clock.Clock
	mockMode bool
}

func NewBillingPaymentHandler(uc usecase.IBillingPaymentUseCase, bookings usecase.IBookingUseCase, clk clock.Clock, mockMode bool) *BillingPaymentHandler {
	if clk == nil {
		clk = clock.WallClock
	}
	return &BillingPaymentHandler{usecase: uc, bookings: bookings, clock: clk, mockMode: mockMode}
}

// GetBilling godoc
// @Summary      Get a billing
// @Tags         billings
// @Produce      json
// @Param        id   path      string  true  "billing id"
// @Success      200  {object}  response.BillingResponse
// @Security     Bearer
// @Router       /billings/{id} [get]
func (h *BillingPaymentHandler) GetBilling(c *gin.Context) {
	b, ok := h.load(c, ownsOrStaff)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.FromBilling(b))
}

// GetBillingByQuote godoc
// @Summary      Get the billing opened by an approved quote
// @Tags         billings
// @Produce      json
// @Param        id   path      string  true  "quote id"
// @Success      200  {object}  response.BillingResponse
// @Security     Bearer
// @Router       /quotes/{id}/billing [get]
func (h *BillingPaymentHandler) GetBillingByQuote(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	b, err := h.usecase.GetBillingByQuoteID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[billing][handler] get-by-quote")
		return
	}
	owner, ok := ownerOfBooking(c, p, h.bookings, b.CustomerID, b.BookingID, "[billing][handler] get-by-quote")
	if !ok || !ownsOrStaff(c, p, owner) {
		return
	}
	c.JSON(http.StatusOK, response.FromBilling(b))
}

// RecordPayment godoc
// @Summary      Record a payment taken at the counter
// @Tags         billings
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "billing id"
// @Param        body  body      request.RecordPaymentRequest  true  "payment"
// @Success      201   {object}  response.SettlementResponse
// @Failure      400,409  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /billings/{id}/payments [post]
func (h *BillingPaymentHandler) RecordPayment(c *gin.Context) {
	var body request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWith(c, errInvalidRequest)
		return
	}
	paidAt := h.clock.Now()
	if strings.TrimSpace(body.PaidAt) != "" {
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(body.PaidAt))
		if err != nil {
			abortWith(c, errInvalidRequest)
			return
		}
		paidAt = t
	}

	billing, payment, err := h.usecase.RecordPayment(c.Request.Context(), c.Param("id"), body.Amount, paidAt)
	if err != nil {
		respondError(c, err, "[payment][handler] record")
		return
	}
	c.JSON(http.StatusCreated, response.SettlementResponse{Billing: response.FromBilling(billing), Payment: response.FromPayment(payment)})
}

// Checkout godoc
// @Summary      Pay a billing through Mercado Pago
// @Description  The body is the Mercado Pago payment request, optionally wrapped in {"mp_payload": ...}.
// @Tags         billings
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true   "billing id"
// @Param        body  body      request.CheckoutRequest  false  "provider payload"
// @Success      201   {object}  response.SettlementResponse
// @Failure      400,409,502,503  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /billings/{id}/checkout [post]
func (h *BillingPaymentHandler) Checkout(c *gin.Context) {
	billing, ok := h.load(c, ownsOrAdmin)
	if !ok {
		return
	}
	logger := log.WithField("billing_id", billing.ID)
	logger.Info("[payment][handler] checkout start")

	mpPayload, err := readMPPayload(c)
	if err != nil {
		if !h.mockMode {
			logger.WithError(err).Info("[payment][handler] invalid payload")
			abortWith(c, errInvalidRequest)
			return
		}
		logger.WithError(err).Info("[payment][handler] payload invalid in mock mode; fallback to empty payload")
		mpPayload = json.RawMessage("{}")
	}

	paid, payment, err := h.usecase.Checkout(c.Request.Context(), billing.ID, mpPayload)
	if err != nil {
		respondError(c, err, "[payment][handler] checkout")
		return
	}
	logger.WithField("payment_id", payment.ID).Info("[payment][handler] checkout success")
	c.JSON(http.StatusCreated, response.SettlementResponse{Billing: response.FromBilling(paid), Payment: response.FromPayment(payment)})
}

// GetPayment godoc
// @Summary      Get the payment of a billing
// @Tags         billings
// @Produce      json
// @Param        id   path      string  true  "billing id"
// @Success      200  {object}  response.PaymentResponse
// @Failure      404  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /billings/{id}/payment [get]
func (h *BillingPaymentHandler) GetPayment(c *gin.Context) {
	billing, ok := h.load(c, ownsOrStaff)
	if !ok {
		return
	}
	payment, err := h.usecase.GetPaymentByBillingID(c.Request.Context(), billing.ID)
	if err != nil {
		respondError(c, err, "[payment][handler] get-by-billing")
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(payment))
}

// Invoice godoc
// @Summary      Download the invoice PDF of a billing
// @Tags         billings
// @Produce      application/pdf
// @Param        id   path  string  true  "billing id"
// @Success      200  {file}  binary
// @Security     Bearer
// @Router       /billings/{id}/invoice [get]
func (h *BillingPaymentHandler) Invoice(c *gin.Context) {
	billing, ok := h.load(c, ownsOrStaff)
	if !ok {
		return
	}
	pdf, err := h.usecase.RenderInvoice(c.Request.Context(), billing.ID)
	if err != nil {
		respondError(c, err, "[billing][handler] invoice")
		return
	}
	c.Header("Content-Disposition", `inline; filename="invoice-`+billing.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *BillingPaymentHandler) load(c *gin.Context, allowed accessCheck) (entities.Billing, bool) {
	p, ok := principal(c)
	if !ok {
		return entities.Billing{}, false
	}
	b, err := h.usecase.GetBillingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[billing][handler] get")
		return entities.Billing{}, false
	}
	owner, ok := ownerOfBooking(c, p, h.bookings, b.CustomerID, b.BookingID, "[billing][handler] get")
	if !ok || !allowed(c, p, owner) {
		return entities.Billing{}, false
	}
	return b, true
}

func readMPPayload(c *gin.Context) (json.RawMessage, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("request body is not valid json")
	}

	var envelope request.CheckoutRequest
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.MPPayload != nil {
		wrapped := strings.TrimSpace(string(envelope.MPPayload))
		if wrapped == "" || wrapped == "null" {
			return nil, errors.New("mp_payload cannot be empty")
		}
		return envelope.MPPayload, nil
	}

	return json.RawMessage(raw), nil
}
