package interfaces

import "mecanica_booking/internal/domain/entities"

// InvoiceData is everything printed on an invoice.
type InvoiceData struct {
	Billing  entities.Billing
	Payment  *entities.Payment
	Booking  entities.Booking
	Customer entities.User
	Service  entities.Service
	Car      entities.Car
}

type IInvoiceRenderer interface {
	Render(data InvoiceData) ([]byte, error)
}
