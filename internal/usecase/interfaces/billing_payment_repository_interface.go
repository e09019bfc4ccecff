package interfaces

import (
	"context"

	"mecanica_booking/internal/domain/entities"
)

// IBillingPaymentRepository abstracts persistence for Billing and Payment.
// Billings are only created through IQuoteRepository.ApproveWithBilling.

type IBillingPaymentRepository interface {
	GetBillingByID(ctx context.Context, id string) (entities.Billing, error)
	GetBillingByQuoteID(ctx context.Context, quoteID string) (entities.Billing, error)
	GetPaymentByBillingID(ctx context.Context, billingID string) (entities.Payment, error)
	// SettleWithPayment stores the payment and flips the billing to PAID in one
	// write; ErrStaleWrite when the billing is missing or already PAID.
	SettleWithPayment(ctx context.Context, billingID string, p entities.Payment) (entities.Billing, error)
}
