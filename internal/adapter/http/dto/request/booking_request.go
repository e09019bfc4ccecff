package request

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidScheduledAt = errors.New("scheduled_at must be RFC3339")

// CreateBookingRequest is sent by a customer. technician_id is only honoured
// when the service allows the customer to choose.
type CreateBookingRequest struct {
	CarID        string `json:"car_id" binding:"required"`
	ServiceID    string `json:"service_id" binding:"required"`
	ScheduledAt  string `json:"scheduled_at" binding:"required" example:"2024-05-01T09:00:00-03:00"`
	TechnicianID string `json:"technician_id"`
}

type AssignTechnicianRequest struct {
	TechnicianID string `json:"technician_id" binding:"required"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RescheduleBookingRequest struct {
	ScheduledAt string `json:"scheduled_at" binding:"required" example:"2024-05-02T09:00:00-03:00"`
}

// ParseInstant accepts RFC3339 with or without fractional seconds. A value
// without offset is read in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidScheduledAt
}

// ParseDay reads a YYYY-MM-DD calendar day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
}
