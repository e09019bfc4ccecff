package response

import (
	"encoding/json"
	"time"

	"mecanica_booking/internal/domain/entities"
)

type BillingResponse struct {
	ID         string     `json:"id"`
	QuoteID    string     `json:"quote_id"`
	BookingID  string     `json:"booking_id"`
	CustomerID string     `json:"customer_id"`
	Total      float64    `json:"total"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

type PaymentResponse struct {
	PaymentID string    `json:"payment_id"`
	BillingID string    `json:"billing_id"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`

	Provider          string         `json:"provider,omitempty"`
	ProviderPaymentID string         `json:"provider_payment_id,omitempty"`
	MPPayloadRaw      string         `json:"mp_payload_raw,omitempty"`
	MPPayload         map[string]any `json:"mp_payload,omitempty"`
}

// SettlementResponse is returned once a billing has been paid.
type SettlementResponse struct {
	Billing BillingResponse `json:"billing"`
	Payment PaymentResponse `json:"payment"`
}

func FromBilling(b entities.Billing) BillingResponse {
	return BillingResponse{
		ID:         b.ID,
		QuoteID:    b.QuoteID,
		BookingID:  b.BookingID,
		CustomerID: b.CustomerID,
		Total:      b.Total,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		PaidAt:     b.PaidAt,
	}
}

func FromPayment(p entities.Payment) PaymentResponse {
	res := PaymentResponse{
		PaymentID:         p.ID,
		BillingID:         p.BillingID,
		Amount:            p.Amount,
		PaidAt:            p.PaidAt,
		Provider:          p.Provider,
		ProviderPaymentID: p.ProviderPaymentID,
	}
	if len(p.ProviderPayloadRaw) > 0 {
		res.MPPayloadRaw = string(p.ProviderPayloadRaw)
		var parsed map[string]any
		if err := json.Unmarshal(p.ProviderPayloadRaw, &parsed); err == nil {
			res.MPPayload = parsed
		}
	}
	return res
}
