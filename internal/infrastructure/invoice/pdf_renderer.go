package invoice

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"mecanica_booking/internal/usecase/interfaces"

	"github.com/juju/errors"
	"github.com/phpdave11/gofpdf"
)

// PDFRenderer renders billing invoices as A4 PDFs.
type PDFRenderer struct {
	shopName string
	loc      *time.Location
}

var _ interfaces.IInvoiceRenderer = (*PDFRenderer)(nil)

func NewPDFRenderer(shopName string, loc *time.Location) *PDFRenderer {
	if loc == nil {
		loc = time.Local
	}
	return &PDFRenderer{shopName: safe(shopName, "Repair Shop"), loc: loc}
}

func (r *PDFRenderer) Render(d interfaces.InvoiceData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+d.Billing.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, r.shopName+" - INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(s string) {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	line("Invoice No : " + d.Billing.ID)
	line("Issued     : " + d.Billing.CreatedAt.In(r.loc).Format("2006-01-02 15:04"))
	line("Status     : " + string(d.Billing.Status))
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	line("Billed to:")
	pdf.SetFont("Helvetica", "", 12)
	line("Name  : " + safe(d.Customer.Name, d.Billing.CustomerID))
	line("Email : " + safe(d.Customer.Email, "-"))
	line("Phone : " + safe(d.Customer.Phone, "-"))
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	line("Details:")
	pdf.SetFont("Helvetica", "", 11)
	vehicle := strings.TrimSpace(fmt.Sprintf("%s %s %s", d.Car.Brand, d.Car.Model, d.Car.Year))
	line("Booking   : " + d.Booking.ID)
	line("Scheduled : " + d.Booking.ScheduledAt.In(r.loc).Format("2006-01-02 15:04"))
	line("Service   : " + safe(d.Service.Name, d.Booking.ServiceID))
	line("Vehicle   : " + safe(vehicle, "-") + " (" + safe(d.Car.PlateNo, "-") + ")")
	if desc := strings.TrimSpace(d.Service.Description); desc != "" {
		pdf.MultiCell(0, 6, desc, "", "", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	line("Total: " + formatMoney(d.Billing.Total))

	if d.Payment != nil {
		pdf.SetFont("Helvetica", "", 11)
		line("Paid " + formatMoney(d.Payment.Amount) + " on " + d.Payment.PaidAt.In(r.loc).Format("2006-01-02 15:04"))
		if d.Payment.ProviderPaymentID != "" {
			line("Provider reference: " + d.Payment.Provider + " " + d.Payment.ProviderPaymentID)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Annotate(err, "writing invoice pdf")
	}
	return buf.Bytes(), nil
}

func safe(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
