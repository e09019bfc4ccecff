package response

import (
	"encoding/json"
	"testing"
	"time"

	"mecanica_booking/internal/domain/entities"
)

func TestFromPayment(t *testing.T) {
	now := time.Now().UTC()
	raw := json.RawMessage(`{"id":123,"status":"approved"}`)

	p := entities.Payment{
		ID:                 "pay-1",
		BillingID:          "bill-1",
		Amount:             1000,
		PaidAt:             now,
		Provider:           "mercadopago",
		ProviderPaymentID:  "123",
		ProviderPayloadRaw: raw,
	}

	res := FromPayment(p)
	if res.PaymentID != "pay-1" || res.BillingID != "bill-1" || res.Amount != 1000 {
		t.Fatalf("unexpected fields: %+v", res)
	}
	if !res.PaidAt.Equal(now) {
		t.Fatalf("unexpected paid_at: %+v", res)
	}
	if res.MPPayloadRaw != string(raw) {
		t.Fatalf("unexpected raw payload: %s", res.MPPayloadRaw)
	}
	if res.MPPayload["status"] != "approved" {
		t.Fatalf("unexpected parsed payload: %+v", res.MPPayload)
	}
}

func TestFromPayment_ManualHasNoProviderFields(t *testing.T) {
	b, err := json.Marshal(FromPayment(entities.Payment{ID: "pay-2", BillingID: "bill-2", Amount: 50}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	_ = json.Unmarshal(b, &body)
	for _, k := range []string{"provider", "provider_payment_id", "mp_payload_raw", "mp_payload"} {
		if _, ok := body[k]; ok {
			t.Fatalf("expected %s to be omitted, body=%s", k, b)
		}
	}
}

func TestFromBilling_PaidAt(t *testing.T) {
	paid := time.Date(2024, 5, 3, 17, 30, 0, 0, time.UTC)
	res := FromBilling(entities.Billing{ID: "bill-1", Total: 1000, Status: entities.BillingStatusPaid, PaidAt: &paid})
	if res.Status != "PAID" || res.PaidAt == nil || !res.PaidAt.Equal(paid) {
		t.Fatalf("unexpected billing response: %+v", res)
	}
}
