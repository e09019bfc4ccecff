package request

import "encoding/json"

// CheckoutRequest is the optional envelope of a checkout body. When mp_payload
// is absent the whole body is taken as the Mercado Pago payload.
//
// `mp_payload` is forwarded as-is (raw JSON) to support varying Mercado Pago schemas.
type CheckoutRequest struct {
	MPPayload json.RawMessage `json:"mp_payload"`
}

// RecordPaymentRequest registers a payment taken at the counter. paid_at
// defaults to now.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	PaidAt string  `json:"paid_at" example:"2024-05-03T17:30:00-03:00"`
}
