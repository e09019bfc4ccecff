package memory

import (
	"context"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"
)

type BillingRepository struct {
	s *Store
}

var _ interfaces.IBillingPaymentRepository = (*BillingRepository)(nil)

func (r *BillingRepository) GetBillingByID(_ context.Context, id string) (entities.Billing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyBilling(r.s.billings[id]), nil
}

func (r *BillingRepository) GetBillingByQuoteID(_ context.Context, quoteID string) (entities.Billing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.billingByQuote[quoteID]
	if !ok {
		return entities.Billing{}, nil
	}
	return copyBilling(r.s.billings[id]), nil
}

func (r *BillingRepository) GetPaymentByBillingID(_ context.Context, billingID string) (entities.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.paymentByBilling[billingID]
	if !ok {
		return entities.Payment{}, nil
	}
	return copyPayment(r.s.payments[id]), nil
}

func (r *BillingRepository) SettleWithPayment(_ context.Context, billingID string, p entities.Payment) (entities.Billing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.billings[billingID]
	if !ok || b.Status != entities.BillingStatusUnpaid {
		return entities.Billing{}, interfaces.ErrStaleWrite
	}
	if _, exists := r.s.paymentByBilling[billingID]; exists {
		return entities.Billing{}, interfaces.ErrStaleWrite
	}
	paidAt := p.PaidAt
	b.Status = entities.BillingStatusPaid
	b.PaidAt = &paidAt
	r.s.billings[b.ID] = b
	r.s.payments[p.ID] = copyPayment(p)
	r.s.paymentByBilling[billingID] = p.ID
	return copyBilling(b), nil
}
