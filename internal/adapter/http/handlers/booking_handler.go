package handlers

import (
	"net/http"
	"strings"

	"mecanica_booking/internal/adapter/http/dto/request"
	"mecanica_booking/internal/adapter/http/dto/response"
	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// BookingHandler handles HTTP requests for the booking lifecycle.
type BookingHandler struct {
	bookings     usecase.IBookingUseCase
	jobs         usecase.IJobUseCase
	availability usecase.IAvailabilityUseCase
}

func NewBookingHandler(bookings usecase.IBookingUseCase, jobs usecase.IJobUseCase, availability usecase.IAvailabilityUseCase) *BookingHandler {
	return &BookingHandler{bookings: bookings, jobs: jobs, availability: availability}
}

// Create godoc
// @Summary      Request a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body  body      request.CreateBookingRequest  true  "booking"
// @Success      201   {object}  response.BookingResponse
// @Failure      400,409,422  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body request.CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWith(c, errInvalidRequest)
		return
	}
	at, err := request.ParseInstant(body.ScheduledAt, h.availability.Location())
	if err != nil {
		abortWith(c, errInvalidRequest)
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), usecase.CreateBookingInput{
		CustomerID:   p.UserID,
		CarID:        body.CarID,
		ServiceID:    body.ServiceID,
		ScheduledAt:  at,
		TechnicianID: body.TechnicianID,
	})
	if err != nil {
		respondError(c, err, "[booking][handler] create")
		return
	}
	log.WithFields(log.Fields{"booking_id": b.ID, "customer_id": p.UserID}).Info("[booking][handler] create success")
	c.JSON(http.StatusCreated, response.FromBooking(b))
}

// List godoc
// @Summary      List bookings visible to the caller
// @Tags         bookings
// @Produce      json
// @Param        status  query     string  false  "PENDING|CONFIRMED|REJECTED|CANCELLED"
// @Param        sort    query     string  false  "work_queue|latest|oldest|scheduled_latest|scheduled_oldest"
// @Success      200     {array}   response.BookingResponse
// @Security     Bearer
// @Router       /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.bookings.List(c.Request.Context(), usecase.ListBookingsQuery{
		Viewer: usecase.Viewer{UserID: p.UserID, Role: p.Role},
		Status: entities.BookingStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Sort:   usecase.BookingSort(strings.ToLower(strings.TrimSpace(c.Query("sort")))),
	})
	if err != nil {
		respondError(c, err, "[booking][handler] list")
		return
	}
	c.JSON(http.StatusOK, response.FromBookingList(items))
}

// Get godoc
// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "booking id"
// @Success      200  {object}  response.BookingResponse
// @Failure      404  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	b, ok := h.visibleBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

// GetJob godoc
// @Summary      Get the job of a confirmed booking
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "booking id"
// @Success      200  {object}  response.JobResponse
// @Failure      404  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /bookings/{id}/job [get]
func (h *BookingHandler) GetJob(c *gin.Context) {
	b, ok := h.visibleBooking(c)
	if !ok {
		return
	}
	job, err := h.jobs.GetByBookingID(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, err, "[job][handler] get-by-booking")
		return
	}
	c.JSON(http.StatusOK, response.FromJob(job))
}

// AssignTechnician godoc
// @Summary      Assign a technician
// @Description  Fails with 409 when the technician already has an active booking that day.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id    path      string                           true  "booking id"
// @Param        body  body      request.AssignTechnicianRequest  true  "technician"
// @Success      200   {object}  response.BookingResponse
// @Failure      409,422,503  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /bookings/{id}/technician [put]
func (h *BookingHandler) AssignTechnician(c *gin.Context) {
	var body request.AssignTechnicianRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWith(c, errInvalidRequest)
		return
	}
	b, err := h.bookings.AssignTechnician(c.Request.Context(), c.Param("id"), body.TechnicianID)
	if err != nil {
		respondError(c, err, "[booking][handler] assign")
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

// Confirm godoc
// @Summary      Confirm a pending booking and open its job
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "booking id"
// @Success      200  {object}  response.ConfirmBookingResponse
// @Failure      404,409  {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	b, job, err := h.bookings.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[booking][handler] confirm")
		return
	}
	c.JSON(http.StatusOK, response.ConfirmBookingResponse{Booking: response.FromBooking(b), Job: response.FromJob(job)})
}

// Reject godoc
// @Summary      Reject a pending booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "booking id"
// @Param        body  body      request.RejectBookingRequest  true  "reason"
// @Success      200   {object}  response.BookingResponse
// @Security     Bearer
// @Router       /bookings/{id}/reject [post]
func (h *BookingHandler) Reject(c *gin.Context) {
	var body request.RejectBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWith(c, errInvalidRequest)
		return
	}
	b, err := h.bookings.Reject(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		respondError(c, err, "[booking][handler] reject")
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

// Cancel godoc
// @Summary      Cancel a booking
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "booking id"
// @Success      200  {object}  response.BookingResponse
// @Security     Bearer
// @Router       /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	if _, ok := h.actionableBooking(c); !ok {
		return
	}
	b, err := h.bookings.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[booking][handler] cancel")
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

// Reschedule godoc
// @Summary      Move a booking to another date
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id    path      string                            true  "booking id"
// @Param        body  body      request.RescheduleBookingRequest  true  "new date"
// @Success      200   {object}  response.BookingResponse
// @Failure      409   {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /bookings/{id}/schedule [put]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	var body request.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWith(c, errInvalidRequest)
		return
	}
	at, err := request.ParseInstant(body.ScheduledAt, h.availability.Location())
	if err != nil {
		abortWith(c, errInvalidRequest)
		return
	}
	if _, ok := h.actionableBooking(c); !ok {
		return
	}
	b, err := h.bookings.Reschedule(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		respondError(c, err, "[booking][handler] reschedule")
		return
	}
	c.JSON(http.StatusOK, response.FromBooking(b))
}

func (h *BookingHandler) visibleBooking(c *gin.Context) (entities.Booking, bool) {
	p, ok := principal(c)
	if !ok {
		return entities.Booking{}, false
	}
	b, err := h.bookings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[booking][handler] get")
		return entities.Booking{}, false
	}
	if !ownsOrStaff(c, p, ownerOf(b)) {
		return entities.Booking{}, false
	}
	return b, true
}

func (h *BookingHandler) actionableBooking(c *gin.Context) (entities.Booking, bool) {
	p, ok := principal(c)
	if !ok {
		return entities.Booking{}, false
	}
	b, err := h.bookings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[booking][handler] get")
		return entities.Booking{}, false
	}
	if !ownsOrAdmin(c, p, ownerOf(b)) {
		return entities.Booking{}, false
	}
	return b, true
}
