package entities

import "time"

// BookingStatus represents the lifecycle of a service booking.
//
//	PENDING -> CONFIRMED | REJECTED | CANCELLED
//	CONFIRMED -> CANCELLED
//
// REJECTED and CANCELLED are terminal.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
	BookingStatusRejected:  nil,
	BookingStatusCancelled: nil,
}

// ParseBookingStatus rejects anything outside the closed set of statuses.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(s)
	if _, ok := bookingTransitions[st]; !ok {
		return "", false
	}
	return st, true
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active bookings count towards technician scheduling conflicts.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Booking is one customer request to have a service performed on a car.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (technician_id-scheduled_at-index): technician_id, scheduled_at (sparse)
//
// Version is bumped on every write that can affect scheduling; writes are
// conditional on the version that was read.
type Booking struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	CarID         string        `json:"car_id"`
	ServiceID     string        `json:"service_id"`
	ScheduledAt   time.Time     `json:"scheduled_at"`
	Status        BookingStatus `json:"status"`
	TechnicianID  string        `json:"technician_id,omitempty"`
	RejectReason  string        `json:"reject_reason,omitempty"`
	ActiveQuoteID string        `json:"active_quote_id,omitempty"`
	Version       int64         `json:"version"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// BookingConflict describes the booking that keeps a technician busy on a day,
// with enough detail to build a message for the caller.
type BookingConflict struct {
	BookingID    string    `json:"booking_id"`
	TechnicianID string    `json:"technician_id"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	ServiceID    string    `json:"service_id"`
	ServiceName  string    `json:"service_name"`
	ScheduledAt  time.Time `json:"scheduled_at"`
}

// DayWindow returns the inclusive [00:00:00.000, 23:59:59.999] range of the
// calendar day containing t, evaluated in loc.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// ScheduleInstant is the stored form of a booking time: UTC at millisecond
// precision, so every instant falls inside exactly one DayWindow.
func ScheduleInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// DayKey is the YYYY-MM-DD label of the calendar day containing t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	start, _ := DayWindow(t, loc)
	return start.Format("2006-01-02")
}
