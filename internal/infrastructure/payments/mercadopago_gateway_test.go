package payments

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
)

func TestNewMercadoPagoGateway_RequiresToken(t *testing.T) {
	_, err := NewMercadoPagoGateway("", false)
	if !errors.Is(err, ErrMissingAccessToken) {
		t.Fatalf("expected ErrMissingAccessToken, got %v", err)
	}

	g, err := NewMercadoPagoGateway("", true)
	if err != nil || g == nil || !g.mockMode {
		t.Fatalf("expected mock gateway, got %+v err=%v", g, err)
	}
}

func TestCreatePayment_NilGateway(t *testing.T) {
	var g *MercadoPagoGateway
	if _, _, _, err := g.CreatePayment(context.Background(), json.RawMessage(`{}`)); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, _, _, err := (&MercadoPagoGateway{}).CreatePayment(context.Background(), json.RawMessage(`{}`)); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured for missing client, got %v", err)
	}
}

func TestCreatePayment_MockApprovesAndEchoesPayload(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	g := NewMockGateway(testclock.NewClock(now))

	id, status, raw, err := g.CreatePayment(context.Background(), json.RawMessage(`{"transaction_amount":1000,"external_reference":"bill-1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "approved" {
		t.Fatalf("expected approved, got %s", status)
	}
	if id == "" {
		t.Fatalf("expected provider id")
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("response is not json: %v", err)
	}
	if got["external_reference"] != "bill-1" || got["transaction_amount"] != 1000.0 {
		t.Fatalf("payload not echoed: %v", got)
	}
	if got["id"] != id || got["status_detail"] != "accredited" {
		t.Fatalf("unexpected provider fields: %v", got)
	}
	if got["date_approved"] != "2024-05-02T10:00:00.000Z" {
		t.Fatalf("unexpected date_approved %v", got["date_approved"])
	}
}

func TestCreatePayment_MockKeepsUnparseablePayload(t *testing.T) {
	g := NewMockGateway(testclock.NewClock(time.Unix(0, 0)))

	_, _, raw, err := g.CreatePayment(context.Background(), json.RawMessage(`not-json`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("response is not json: %v", err)
	}
	if got["request_payload_raw"] != "not-json" {
		t.Fatalf("expected raw payload kept, got %v", got)
	}
}
