package entities

import (
	"encoding/json"
	"time"
)

type BillingStatus string

const (
	BillingStatusUnpaid BillingStatus = "UNPAID"
	BillingStatusPaid   BillingStatus = "PAID"
)

func ParseBillingStatus(s string) (BillingStatus, bool) {
	switch st := BillingStatus(s); st {
	case BillingStatusUnpaid, BillingStatusPaid:
		return st, true
	}
	return "", false
}

// Billing is the invoice generated when a quote is approved.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (quote_id-index): quote_id
//
// Total is a snapshot of the quote total at approval time and never follows later quote changes.
type Billing struct {
	ID         string        `json:"id"`
	QuoteID    string        `json:"quote_id"`
	BookingID  string        `json:"booking_id"`
	CustomerID string        `json:"customer_id"`
	Total      float64       `json:"total"`
	Status     BillingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	PaidAt     *time.Time    `json:"paid_at,omitempty"`
}

func (b Billing) Paid() bool {
	return b.Status == BillingStatusPaid
}

// Payment settles a Billing. There is at most one per billing and it is never mutated.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (billing_id-index): billing_id
//
// Provider fields are only set when the payment went through the payment gateway:
//   - ProviderPayloadRaw keeps the original provider response (JSON) for traceability/audit.
type Payment struct {
	ID        string    `json:"id"`
	BillingID string    `json:"billing_id"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`

	Provider           string          `json:"provider,omitempty"`
	ProviderPaymentID  string          `json:"provider_payment_id,omitempty"`
	ProviderPayloadRaw json.RawMessage `json:"provider_payload_raw,omitempty"`
}
