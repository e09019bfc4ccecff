package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"mecanica_booking/internal/usecase/interfaces"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	log "github.com/sirupsen/logrus"
)

const (
	ErrMissingAccessToken = errors.ConstError("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrNotConfigured      = errors.ConstError("mercado pago gateway not configured")
)

// MercadoPagoGateway creates payments through the Mercado Pago SDK. In mock
// mode it never leaves the process and approves every request.
type MercadoPagoGateway struct {
	client   payment.Client
	mockMode bool
	clock    clock.Clock
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, mockMode bool) (*MercadoPagoGateway, error) {
	if mockMode {
		log.Info("[payment][gateway] mock mode enabled")
		return &MercadoPagoGateway{mockMode: true, clock: clock.WallClock}, nil
	}
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, errors.Annotate(err, "creating mercado pago config")
	}
	log.Info("[payment][gateway] Mercado Pago client initialized")
	return &MercadoPagoGateway{client: payment.NewClient(cfg), clock: clock.WallClock}, nil
}

// NewMockGateway returns a mock-mode gateway stamping responses with clk.
func NewMockGateway(clk clock.Clock) *MercadoPagoGateway {
	return &MercadoPagoGateway{mockMode: true, clock: clk}
}

func (g *MercadoPagoGateway) CreatePayment(ctx context.Context, requestPayload json.RawMessage) (string, string, json.RawMessage, error) {
	if g == nil {
		return "", "", nil, ErrNotConfigured
	}
	if g.mockMode {
		return g.mockCreate(requestPayload)
	}
	if g.client == nil {
		return "", "", nil, ErrNotConfigured
	}
	logger := log.WithField("payload_len", len(requestPayload))
	logger.Info("[payment][gateway] create start")

	var req payment.Request
	if err := json.Unmarshal(requestPayload, &req); err != nil {
		return "", "", nil, errors.Annotate(err, "decoding payment request")
	}

	resp, err := g.client.Create(ctx, req)
	if err != nil {
		// The SDK error text carries the provider's JSON body; keep it intact
		// so the caller can classify it.
		logger.WithError(err).Warn("[payment][gateway] sdk create failed")
		return "", "", nil, err
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", "", nil, errors.Annotate(err, "encoding provider response")
	}
	id := fmt.Sprintf("%d", resp.ID)
	log.WithFields(log.Fields{"provider_payment_id": id, "provider_status": resp.Status}).
		Info("[payment][gateway] create success")
	return id, resp.Status, b, nil
}

func (g *MercadoPagoGateway) mockCreate(requestPayload json.RawMessage) (string, string, json.RawMessage, error) {
	resp := map[string]any{}
	if len(requestPayload) > 0 {
		if err := json.Unmarshal(requestPayload, &resp); err != nil {
			resp = map[string]any{"request_payload_raw": string(requestPayload)}
		}
	}

	now := g.clock.Now().UTC()
	id := strconv.FormatInt(now.UnixNano(), 10)
	resp["id"] = id
	resp["status"] = "approved"
	resp["status_detail"] = "accredited"
	for _, k := range []string{"date_created", "date_approved"} {
		if _, ok := resp[k]; !ok {
			resp[k] = now.Format("2006-01-02T15:04:05.000Z07:00")
		}
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", "", nil, errors.Annotate(err, "encoding mock response")
	}
	log.WithField("provider_payment_id", id).Info("[payment][gateway] mock create success")
	return id, "approved", b, nil
}
