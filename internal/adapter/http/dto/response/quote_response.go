package response

import (
	"time"

	"mecanica_booking/internal/domain/entities"
)

type QuoteResponse struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	CustomerID string    `json:"customer_id"`
	Total      float64   `json:"total"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ApproveQuoteResponse returns the approved quote with the billing it produced.
type ApproveQuoteResponse struct {
	Quote   QuoteResponse   `json:"quote"`
	Billing BillingResponse `json:"billing"`
}

func FromQuote(q entities.Quote) QuoteResponse {
	return QuoteResponse{
		ID:         q.ID,
		BookingID:  q.BookingID,
		CustomerID: q.CustomerID,
		Total:      q.Total,
		Status:     string(q.Status),
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}
