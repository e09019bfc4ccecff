package entities

import "time"

// QuoteStatus represents the lifecycle of a quote proposed for a booking.
//
// Domain notes:
//   - A quote is only proposed for CONFIRMED bookings.
//   - Approval freezes the total into a Billing; an approved quote is a financial record.

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "PENDING"
	QuoteStatusApproved QuoteStatus = "APPROVED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

func ParseQuoteStatus(s string) (QuoteStatus, bool) {
	switch st := QuoteStatus(s); st {
	case QuoteStatusPending, QuoteStatusApproved, QuoteStatusRejected:
		return st, true
	}
	return "", false
}

// Quote is the price proposed to the customer for a booking's work.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (booking_id-index): booking_id
//
// CustomerID is copied from the booking so ownership checks do not need a second read.
type Quote struct {
	ID         string      `json:"id"`
	BookingID  string      `json:"booking_id"`
	CustomerID string      `json:"customer_id"`
	Total      float64     `json:"total"`
	Status     QuoteStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Deletable reports whether the quote may still be withdrawn.
func (q Quote) Deletable() bool {
	return q.Status == QuoteStatusPending
}
