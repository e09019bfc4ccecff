package handlers

import (
	"net/http"

	"mecanica_booking/internal/adapter/http/dto/request"
	"mecanica_booking/internal/adapter/http/dto/response"
	"mecanica_booking/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	usecase usecase.IAvailabilityUseCase
}

func NewAvailabilityHandler(uc usecase.IAvailabilityUseCase) *AvailabilityHandler {
	return &AvailabilityHandler{usecase: uc}
}

// Check godoc
// @Summary      Check whether a technician is free on a day
// @Tags         availability
// @Produce      json
// @Param        technician_id  query     string  true   "technician id"
// @Param        date           query     string  true   "YYYY-MM-DD in the shop timezone"
// @Param        exclude        query     string  false  "booking id to ignore"
// @Success      200  {object}  response.AvailabilityResponse
// @Security     Bearer
// @Router       /availability [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	technicianID := c.Query("technician_id")
	day, err := request.ParseDay(c.Query("date"), h.usecase.Location())
	if technicianID == "" || err != nil {
		abortWith(c, errInvalidRequest)
		return
	}

	conflict, err := h.usecase.IsTechnicianBusy(c.Request.Context(), technicianID, day, c.Query("exclude"))
	if err != nil {
		respondError(c, err, "[booking][availability] check")
		return
	}

	res := response.AvailabilityResponse{TechnicianID: technicianID, Date: day.Format("2006-01-02")}
	if conflict != nil {
		res.Busy = true
		res.Conflict = response.FromConflict(*conflict)
	}
	c.JSON(http.StatusOK, res)
}
