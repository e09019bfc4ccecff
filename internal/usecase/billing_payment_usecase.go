package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/juju/clock"
	log "github.com/sirupsen/logrus"
)

const ProviderMercadoPago = "mercadopago"

var (
	ErrPaymentGatewayNotConfigured    = errors.New("payment gateway not configured")
	ErrInvoiceRendererNotConfigured   = errors.New("invoice renderer not configured")
	ErrPaymentGatewayUnauthorized     = errors.New("payment gateway unauthorized")
	ErrPaymentGatewayBadRequest       = fmt.Errorf("payment gateway bad request: %w", ErrInvalidArgument)
	ErrPaymentGatewayInvalidUsers     = fmt.Errorf("payment gateway invalid users involved: %w", ErrPolicyViolation)
	ErrPaymentGatewayCustomerNotFound = fmt.Errorf("payment gateway customer not found: %w", ErrInvalidReference)
)

// PaymentSettings tunes how checkout payloads are validated and enriched
// before they reach the payment gateway.
type PaymentSettings struct {
	// MockMode relaxes payload validation; the gateway answers locally.
	MockMode        bool
	AccessToken     string
	TestPayerEmail  string
	TestPayerUserID string
}

// IBillingPaymentUseCase settles billings.
//
//   - RecordPayment: staff records a payment taken outside the system
//   - Checkout: the customer pays through the payment gateway
//
// Both end in the same atomic write: Payment created and Billing flipped to PAID.
type IBillingPaymentUseCase interface {
	RecordPayment(ctx context.Context, billingID string, amount float64, paidAt time.Time) (entities.Billing, entities.Payment, error)
	Checkout(ctx context.Context, billingID string, providerPayload json.RawMessage) (entities.Billing, entities.Payment, error)
	GetBillingByID(ctx context.Context, id string) (entities.Billing, error)
	GetBillingByQuoteID(ctx context.Context, quoteID string) (entities.Billing, error)
	GetPaymentByBillingID(ctx context.Context, billingID string) (entities.Payment, error)
	RenderInvoice(ctx context.Context, billingID string) ([]byte, error)
}

type BillingPaymentUseCase struct {
	repo        interfaces.IBillingPaymentRepository
	bookingRepo interfaces.IBookingRepository
	catalog     interfaces.ICatalogRepository
	gateway     interfaces.IPaymentGateway
	renderer    interfaces.IInvoiceRenderer
	locker      interfaces.ISlotLocker
	clock       clock.Clock
	observer    interfaces.IWorkflowObserver
	settings    PaymentSettings
}

var _ IBillingPaymentUseCase = (*BillingPaymentUseCase)(nil)

func NewBillingPaymentUseCase(
	repo interfaces.IBillingPaymentRepository,
	bookingRepo interfaces.IBookingRepository,
	catalog interfaces.ICatalogRepository,
	gateway interfaces.IPaymentGateway,
	renderer interfaces.IInvoiceRenderer,
	locker interfaces.ISlotLocker,
	clk clock.Clock,
	observer interfaces.IWorkflowObserver,
	settings PaymentSettings,
) *BillingPaymentUseCase {
	if clk == nil {
		clk = clock.WallClock
	}
	return &BillingPaymentUseCase{
		repo:        repo,
		bookingRepo: bookingRepo,
		catalog:     catalog,
		gateway:     gateway,
		renderer:    renderer,
		locker:      locker,
		clock:       clk,
		observer:    observerOrNoop(observer),
		settings:    settings,
	}
}

func (u *BillingPaymentUseCase) RecordPayment(ctx context.Context, billingID string, amount float64, paidAt time.Time) (entities.Billing, entities.Payment, error) {
	if amount <= 0 {
		return entities.Billing{}, entities.Payment{}, ErrInvalidAmount
	}
	if paidAt.IsZero() {
		return entities.Billing{}, entities.Payment{}, ErrInvalidPaidAt
	}

	billing, err := u.GetBillingByID(ctx, billingID)
	if err != nil {
		return entities.Billing{}, entities.Payment{}, err
	}
	if billing.Paid() {
		return entities.Billing{}, entities.Payment{}, ErrBillingAlreadyPaid
	}
	if !sameAmount(amount, billing.Total) {
		log.WithFields(log.Fields{"billing_id": billing.ID, "amount": amount, "total": billing.Total}).
			Info("[payment][usecase] amount mismatch")
		return entities.Billing{}, entities.Payment{}, ErrPaymentAmountMismatch
	}

	p := entities.Payment{
		ID:        uuid.NewString(),
		BillingID: billing.ID,
		Amount:    billing.Total,
		PaidAt:    paidAt.UTC(),
	}
	return u.settle(ctx, billing, p)
}

// Checkout charges the billing total through the payment gateway and settles
// the billing with the provider's payment. The billing is locked for the
// duration so two checkouts never charge the same billing.
func (u *BillingPaymentUseCase) Checkout(ctx context.Context, billingID string, providerPayload json.RawMessage) (entities.Billing, entities.Payment, error) {
	log.WithFields(log.Fields{"billing_id": billingID, "payload_len": len(providerPayload)}).Info("[payment][usecase] checkout start")
	if u.gateway == nil {
		log.WithField("billing_id", billingID).Error("[payment][usecase] gateway not configured")
		return entities.Billing{}, entities.Payment{}, ErrPaymentGatewayNotConfigured
	}

	billing, err := u.GetBillingByID(ctx, billingID)
	if err != nil {
		return entities.Billing{}, entities.Payment{}, err
	}
	if billing.Paid() {
		return entities.Billing{}, entities.Payment{}, ErrBillingAlreadyPaid
	}

	payload, err := u.preparePayload(billing, providerPayload)
	if err != nil {
		log.WithField("billing_id", billing.ID).WithError(err).Info("[payment][usecase] invalid payload")
		return entities.Billing{}, entities.Payment{}, err
	}

	release, err := u.locker.Acquire(ctx, "billing:"+billing.ID)
	if err != nil {
		u.observer.ObserveLockTimeout()
		return entities.Billing{}, entities.Payment{}, fmt.Errorf("billing %s checkout in progress (%v): %w", billing.ID, err, ErrBusy)
	}
	defer release()

	billing, err = u.GetBillingByID(ctx, billing.ID)
	if err != nil {
		return entities.Billing{}, entities.Payment{}, err
	}
	if billing.Paid() {
		return entities.Billing{}, entities.Payment{}, ErrBillingAlreadyPaid
	}

	log.WithField("billing_id", billing.ID).Info("[payment][usecase] calling payment gateway")
	providerPaymentID, providerStatus, providerResp, err := u.gateway.CreatePayment(ctx, payload)
	if err != nil {
		log.WithField("billing_id", billing.ID).WithError(err).Warn("[payment][usecase] payment gateway failed")
		return entities.Billing{}, entities.Payment{}, classifyGatewayError(err)
	}
	log.WithFields(log.Fields{
		"billing_id":          billing.ID,
		"provider_payment_id": providerPaymentID,
		"provider_status":     providerStatus,
	}).Info("[payment][usecase] payment gateway answered")
	if !strings.EqualFold(providerStatus, "approved") {
		return entities.Billing{}, entities.Payment{}, fmt.Errorf("provider status %q: %w", providerStatus, ErrPaymentNotApproved)
	}

	p := entities.Payment{
		ID:                 uuid.NewString(),
		BillingID:          billing.ID,
		Amount:             billing.Total,
		PaidAt:             u.clock.Now().UTC(),
		Provider:           ProviderMercadoPago,
		ProviderPaymentID:  providerPaymentID,
		ProviderPayloadRaw: providerResp,
	}
	return u.settle(ctx, billing, p)
}

func (u *BillingPaymentUseCase) settle(ctx context.Context, billing entities.Billing, p entities.Payment) (entities.Billing, entities.Payment, error) {
	paid, err := u.repo.SettleWithPayment(ctx, billing.ID, p)
	if err != nil {
		if !errors.Is(err, interfaces.ErrStaleWrite) {
			return entities.Billing{}, entities.Payment{}, annotate(err, "settling billing %s", billing.ID)
		}
		cur, loadErr := u.GetBillingByID(ctx, billing.ID)
		if loadErr != nil {
			return entities.Billing{}, entities.Payment{}, loadErr
		}
		if p.ProviderPaymentID != "" {
			log.WithFields(log.Fields{"billing_id": billing.ID, "provider_payment_id": p.ProviderPaymentID}).
				Error("[payment][usecase] provider payment captured but billing could not be settled")
		}
		if cur.Paid() {
			return entities.Billing{}, entities.Payment{}, ErrBillingAlreadyPaid
		}
		return entities.Billing{}, entities.Payment{}, ErrConcurrentUpdate
	}

	u.observer.ObserveTransition("billing", "paid")
	log.WithFields(log.Fields{"billing_id": paid.ID, "payment_id": p.ID, "amount": p.Amount}).Info("[payment][usecase] billing settled")
	return paid, p, nil
}

func (u *BillingPaymentUseCase) GetBillingByID(ctx context.Context, id string) (entities.Billing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Billing{}, ErrInvalidID
	}
	b, err := u.repo.GetBillingByID(ctx, id)
	if err != nil {
		return entities.Billing{}, annotate(err, "loading billing %s", id)
	}
	if b.ID == "" {
		return entities.Billing{}, ErrBillingNotFound
	}
	return b, nil
}

func (u *BillingPaymentUseCase) GetBillingByQuoteID(ctx context.Context, quoteID string) (entities.Billing, error) {
	quoteID = strings.TrimSpace(quoteID)
	if quoteID == "" {
		return entities.Billing{}, ErrInvalidID
	}
	b, err := u.repo.GetBillingByQuoteID(ctx, quoteID)
	if err != nil {
		return entities.Billing{}, annotate(err, "loading billing of quote %s", quoteID)
	}
	if b.ID == "" {
		return entities.Billing{}, ErrBillingNotFound
	}
	return b, nil
}

func (u *BillingPaymentUseCase) GetPaymentByBillingID(ctx context.Context, billingID string) (entities.Payment, error) {
	billingID = strings.TrimSpace(billingID)
	if billingID == "" {
		return entities.Payment{}, ErrInvalidID
	}
	p, err := u.repo.GetPaymentByBillingID(ctx, billingID)
	if err != nil {
		return entities.Payment{}, annotate(err, "loading payment of billing %s", billingID)
	}
	if p.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

// RenderInvoice produces the PDF invoice of a billing, paid or not.
func (u *BillingPaymentUseCase) RenderInvoice(ctx context.Context, billingID string) ([]byte, error) {
	if u.renderer == nil {
		return nil, ErrInvoiceRendererNotConfigured
	}
	billing, err := u.GetBillingByID(ctx, billingID)
	if err != nil {
		return nil, err
	}
	data := interfaces.InvoiceData{Billing: billing}

	p, err := u.repo.GetPaymentByBillingID(ctx, billing.ID)
	if err != nil {
		return nil, annotate(err, "loading payment of billing %s", billing.ID)
	}
	if p.ID != "" {
		data.Payment = &p
	}

	booking, err := u.bookingRepo.GetByID(ctx, billing.BookingID)
	if err != nil {
		return nil, annotate(err, "loading booking %s", billing.BookingID)
	}
	if booking.ID == "" {
		return nil, ErrBookingNotFound
	}
	data.Booking = booking

	if data.Customer, err = u.catalog.GetUser(ctx, billing.CustomerID); err != nil {
		return nil, annotate(err, "loading customer %s", billing.CustomerID)
	}
	if data.Service, err = u.catalog.GetService(ctx, booking.ServiceID); err != nil {
		return nil, annotate(err, "loading service %s", booking.ServiceID)
	}
	if data.Car, err = u.catalog.GetCar(ctx, booking.CarID); err != nil {
		return nil, annotate(err, "loading car %s", booking.CarID)
	}

	pdf, err := u.renderer.Render(data)
	if err != nil {
		return nil, annotate(err, "rendering invoice for billing %s", billing.ID)
	}
	return pdf, nil
}

// preparePayload fills the fields the provider needs to reconcile the payment
// with the billing. The amount always comes from the billing.
func (u *BillingPaymentUseCase) preparePayload(billing entities.Billing, raw json.RawMessage) (json.RawMessage, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || !json.Valid(raw) {
		if !u.settings.MockMode {
			return nil, ErrInvalidProviderReq
		}
		raw = json.RawMessage("{}")
	}

	var req map[string]any
	if err := json.Unmarshal(raw, &req); err != nil || req == nil {
		if !u.settings.MockMode {
			return nil, ErrInvalidProviderReq
		}
		req = map[string]any{}
	}

	if !u.settings.MockMode {
		if !hasNonEmptyString(req, "payment_method_id") {
			return nil, ErrInvalidProviderReq
		}
		u.normalizeSandboxPayer(req)
		u.ensurePayerDefaults(req)
		if !hasPayer(req) {
			return nil, ErrInvalidProviderReq
		}
	}

	if _, ok := req["external_reference"]; !ok {
		req["external_reference"] = billing.ID
	}
	if _, ok := req["description"]; !ok {
		req["description"] = fmt.Sprintf("Billing %s", billing.ID)
	}
	req["transaction_amount"] = billing.Total

	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (u *BillingPaymentUseCase) sandbox() bool {
	return strings.HasPrefix(strings.TrimSpace(u.settings.AccessToken), "TEST-")
}

func (u *BillingPaymentUseCase) ensurePayerDefaults(m map[string]any) {
	v, ok := m["payer"]
	if !ok || v == nil {
		v = map[string]any{}
		m["payer"] = v
	}
	payer, ok := v.(map[string]any)
	if !ok {
		return
	}
	if _, ok := payer["type"]; !ok {
		payer["type"] = "customer"
	}

	// In sandbox, either payer.id or payer.email may be used.
	if !hasPayerID(payer) && !hasNonEmptyString(payer, "email") {
		if u.settings.TestPayerEmail != "" {
			payer["email"] = u.settings.TestPayerEmail
		} else if u.sandbox() {
			payer["email"] = "test_user_br@testuser.com"
		}
	}
}

// normalizeSandboxPayer swaps the configured sandbox payer user id for its email.
func (u *BillingPaymentUseCase) normalizeSandboxPayer(m map[string]any) {
	payer, ok := m["payer"].(map[string]any)
	if !ok || !hasPayerID(payer) || hasNonEmptyString(payer, "email") {
		return
	}
	if !u.sandbox() || u.settings.TestPayerUserID == "" || u.settings.TestPayerEmail == "" {
		return
	}
	if strings.TrimSpace(fmt.Sprintf("%v", payer["id"])) != u.settings.TestPayerUserID {
		return
	}
	payer["email"] = u.settings.TestPayerEmail
	delete(payer, "id")
	log.Debug("[payment][usecase] mapped sandbox payer user_id to payer.email")
}

func hasNonEmptyString(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	return ok && strings.TrimSpace(s) != ""
}

func hasPayer(m map[string]any) bool {
	payer, ok := m["payer"].(map[string]any)
	if !ok {
		return false
	}
	return hasNonEmptyString(payer, "email") || hasPayerID(payer)
}

func hasPayerID(payer map[string]any) bool {
	v, ok := payer["id"]
	if !ok || v == nil {
		return false
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	return s != "" && s != "<nil>"
}

func classifyGatewayError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "customer not found") || strings.Contains(msg, "\"code\":2002"):
		return ErrPaymentGatewayCustomerNotFound
	case strings.Contains(msg, "invalid users involved") || strings.Contains(msg, "\"code\":2034"):
		return ErrPaymentGatewayInvalidUsers
	case strings.Contains(msg, "\"error\":\"unauthorized\"") || strings.Contains(msg, "\"status\":401"):
		return ErrPaymentGatewayUnauthorized
	case strings.Contains(msg, "\"error\":\"bad_request\"") || strings.Contains(msg, "\"status\":400"):
		return ErrPaymentGatewayBadRequest
	}
	return err
}

// sameAmount compares money at cent precision.
func sameAmount(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
