package response

import (
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase"
)

type BookingResponse struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	CarID         string    `json:"car_id"`
	ServiceID     string    `json:"service_id"`
	TechnicianID  string    `json:"technician_id,omitempty"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Status        string    `json:"status"`
	RejectReason  string    `json:"reject_reason,omitempty"`
	ActiveQuoteID string    `json:"active_quote_id,omitempty"`
	JobStage      string    `json:"job_stage,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ConfirmBookingResponse returns the confirmed booking with the job opened for it.
type ConfirmBookingResponse struct {
	Booking BookingResponse `json:"booking"`
	Job     JobResponse     `json:"job"`
}

type ConflictResponse struct {
	BookingID    string    `json:"booking_id"`
	TechnicianID string    `json:"technician_id"`
	CustomerName string    `json:"customer_name"`
	ServiceName  string    `json:"service_name"`
	ScheduledAt  time.Time `json:"scheduled_at"`
}

type AvailabilityResponse struct {
	TechnicianID string            `json:"technician_id"`
	Date         string            `json:"date"`
	Busy         bool              `json:"busy"`
	Conflict     *ConflictResponse `json:"conflict,omitempty"`
}

func FromBooking(b entities.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		CustomerID:    b.CustomerID,
		CarID:         b.CarID,
		ServiceID:     b.ServiceID,
		TechnicianID:  b.TechnicianID,
		ScheduledAt:   b.ScheduledAt,
		Status:        string(b.Status),
		RejectReason:  b.RejectReason,
		ActiveQuoteID: b.ActiveQuoteID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func FromBookingList(items []usecase.BookingListItem) []BookingResponse {
	out := make([]BookingResponse, 0, len(items))
	for _, it := range items {
		r := FromBooking(it.Booking)
		r.JobStage = string(it.JobStage)
		out = append(out, r)
	}
	return out
}

func FromConflict(c entities.BookingConflict) *ConflictResponse {
	return &ConflictResponse{
		BookingID:    c.BookingID,
		TechnicianID: c.TechnicianID,
		CustomerName: c.CustomerName,
		ServiceName:  c.ServiceName,
		ScheduledAt:  c.ScheduledAt,
	}
}
