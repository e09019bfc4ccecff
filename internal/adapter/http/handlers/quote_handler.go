package handlers

import (
	"net/http"

	"mecanica_booking/internal/adapter/http/dto/request"
	"mecanica_booking/internal/adapter/http/dto/response"
	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

// QuoteHandler handles HTTP requests for quotes.
type QuoteHandler struct {
	quotes   usecase.IQuoteUseCase
	bookings usecase.IBookingUseCase
}

func NewQuoteHandler(uc usecase.IQuoteUseCase, bookings usecase.IBookingUseCase) *QuoteHandler {
	return &QuoteHandler{quotes: uc, bookings: bookings}
}

// Propose godoc
// @Summary      Propose a quote for a confirmed booking
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        body  body      request.ProposeQuoteRequest  true  "quote"
// @Success      201   {object}  response.QuoteResponse
// @Failure      400,404  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /quotes [post]
func (h *QuoteHandler) Propose(c *gin.Context) {
	var body request.ProposeQuoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWith(c, errInvalidRequest)
		return
	}
	q, err := h.quotes.Propose(c.Request.Context(), body.BookingID, body.Amount)
	if err != nil {
		respondError(c, err, "[quote][handler] propose")
		return
	}
	c.JSON(http.StatusCreated, response.FromQuote(q))
}

// Get godoc
// @Summary      Get a quote
// @Tags         quotes
// @Produce      json
// @Param        id   path      string  true  "quote id"
// @Success      200  {object}  response.QuoteResponse
// @Security     Bearer
// @Router       /quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	q, ok := h.load(c, ownsOrStaff)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q))
}

// GetByBooking godoc
// @Summary      Get the active quote of a booking
// @Tags         quotes
// @Produce      json
// @Param        id   path      string  true  "booking id"
// @Success      200  {object}  response.QuoteResponse
// @Security     Bearer
// @Router       /bookings/{id}/quote [get]
func (h *QuoteHandler) GetByBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	q, err := h.quotes.GetByBookingID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[quote][handler] get-by-booking")
		return
	}
	owner, ok := ownerOfBooking(c, p, h.bookings, q.CustomerID, q.BookingID, "[quote][handler] get-by-booking")
	if !ok || !ownsOrStaff(c, p, owner) {
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q))
}

// Approve godoc
// @Summary      Approve a quote and open its billing
// @Tags         quotes
// @Produce      json
// @Param        id   path      string  true  "quote id"
// @Success      200  {object}  response.ApproveQuoteResponse
// @Failure      409  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /quotes/{id}/approve [post]
func (h *QuoteHandler) Approve(c *gin.Context) {
	q, ok := h.load(c, ownsOrAdmin)
	if !ok {
		return
	}
	approved, billing, err := h.quotes.Approve(c.Request.Context(), q.ID)
	if err != nil {
		respondError(c, err, "[quote][handler] approve")
		return
	}
	c.JSON(http.StatusOK, response.ApproveQuoteResponse{Quote: response.FromQuote(approved), Billing: response.FromBilling(billing)})
}

// Delete godoc
// @Summary      Withdraw a pending quote
// @Tags         quotes
// @Param        id   path  string  true  "quote id"
// @Success      204
// @Failure      409  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	q, ok := h.load(c, ownsOrAdmin)
	if !ok {
		return
	}
	if err := h.quotes.Delete(c.Request.Context(), q.ID); err != nil {
		respondError(c, err, "[quote][handler] delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuoteHandler) load(c *gin.Context, allowed accessCheck) (entities.Quote, bool) {
	p, ok := principal(c)
	if !ok {
		return entities.Quote{}, false
	}
	q, err := h.quotes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[quote][handler] get")
		return entities.Quote{}, false
	}
	owner, ok := ownerOfBooking(c, p, h.bookings, q.CustomerID, q.BookingID, "[quote][handler] get")
	if !ok || !allowed(c, p, owner) {
		return entities.Quote{}, false
	}
	return q, true
}
