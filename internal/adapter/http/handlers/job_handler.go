package handlers

import (
	"net/http"
	"strings"

	"mecanica_booking/internal/adapter/http/dto/request"
	"mecanica_booking/internal/adapter/http/dto/response"
	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobs     usecase.IJobUseCase
	bookings usecase.IBookingUseCase
}

func NewJobHandler(jobs usecase.IJobUseCase, bookings usecase.IBookingUseCase) *JobHandler {
	return &JobHandler{jobs: jobs, bookings: bookings}
}

// Get godoc
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "job id"
// @Success      200  {object}  response.JobResponse
// @Security     Bearer
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "[job][handler] get")
		return
	}
	if !p.Is(entities.RoleAdmin) {
		b, err := h.bookings.GetByID(c.Request.Context(), job.BookingID)
		if err != nil {
			respondError(c, err, "[job][handler] get")
			return
		}
		if !ownsOrStaff(c, p, ownerOf(b)) {
			return
		}
	}
	c.JSON(http.StatusOK, response.FromJob(job))
}

// Advance godoc
// @Summary      Move a job to the next stage, or forward to the given one
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true   "job id"
// @Param        body  body      request.AdvanceJobRequest  false  "target stage"
// @Success      200   {object}  response.JobResponse
// @Failure      409   {object}  pkg.HTTPError
// @Security     Bearer
// @Router       /jobs/{id}/advance [post]
func (h *JobHandler) Advance(c *gin.Context) {
	var body request.AdvanceJobRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWith(c, errInvalidRequest)
			return
		}
	}

	var (
		job entities.Job
		err error
	)
	if stage := strings.ToUpper(strings.TrimSpace(body.Stage)); stage != "" {
		job, err = h.jobs.AdvanceTo(c.Request.Context(), c.Param("id"), entities.JobStage(stage))
	} else {
		job, err = h.jobs.Advance(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		respondError(c, err, "[job][handler] advance")
		return
	}
	c.JSON(http.StatusOK, response.FromJob(job))
}

// AddNote godoc
// @Summary      Append a note to a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "job id"
// @Param        body  body      request.AddJobNoteRequest  true  "note"
// @Success      201   {object}  response.JobResponse
// @Security     Bearer
// @Router       /jobs/{id}/notes [post]
func (h *JobHandler) AddNote(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body request.AddJobNoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWith(c, errInvalidRequest)
		return
	}
	job, err := h.jobs.AddNote(c.Request.Context(), c.Param("id"), p.UserID, body.Text)
	if err != nil {
		respondError(c, err, "[job][handler] add-note")
		return
	}
	c.JSON(http.StatusCreated, response.FromJob(job))
}
