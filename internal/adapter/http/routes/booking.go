package routes

import (
	"mecanica_booking/internal/adapter/http/middleware"
	"mecanica_booking/internal/domain/entities"

	"github.com/gin-gonic/gin"
)

const (
	PathBookings     = "/bookings"
	PathAvailability = "/availability"
	PathJobs         = "/jobs"
	PathQuotes       = "/quotes"
	PathBillings     = "/billings"
)

var (
	adminOnly     = middleware.RequireRoles(entities.RoleAdmin)
	customerOnly  = middleware.RequireRoles(entities.RoleCustomer)
	customerAdmin = middleware.RequireRoles(entities.RoleCustomer, entities.RoleAdmin)
	staff         = middleware.RequireRoles(entities.RoleTechnician, entities.RoleAdmin)
)

// Reads are open to every authenticated role; handlers keep customers to
// their own records.
func addBookingRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET(PathAvailability, h.Availability.Check)

	bookings := rg.Group(PathBookings)
	{
		bookings.POST("", customerOnly, h.Bookings.Create)
		bookings.GET("", h.Bookings.List)
		bookings.GET("/:id", h.Bookings.Get)
		bookings.GET("/:id/job", h.Bookings.GetJob)
		bookings.GET("/:id/quote", h.Quotes.GetByBooking)

		bookings.PUT("/:id/technician", adminOnly, h.Bookings.AssignTechnician)
		bookings.POST("/:id/confirm", adminOnly, h.Bookings.Confirm)
		bookings.POST("/:id/reject", adminOnly, h.Bookings.Reject)
		bookings.POST("/:id/cancel", customerAdmin, h.Bookings.Cancel)
		bookings.PUT("/:id/schedule", customerAdmin, h.Bookings.Reschedule)
	}
}

func addJobRoutes(rg *gin.RouterGroup, h Handlers) {
	jobs := rg.Group(PathJobs)
	{
		jobs.GET("/:id", h.Jobs.Get)
		jobs.POST("/:id/advance", staff, h.Jobs.Advance)
		jobs.POST("/:id/notes", staff, h.Jobs.AddNote)
	}
}

func addQuoteRoutes(rg *gin.RouterGroup, h Handlers) {
	quotes := rg.Group(PathQuotes)
	{
		quotes.POST("", adminOnly, h.Quotes.Propose)
		quotes.GET("/:id", h.Quotes.Get)
		quotes.GET("/:id/billing", h.Billing.GetBillingByQuote)
		quotes.POST("/:id/approve", customerAdmin, h.Quotes.Approve)
		quotes.DELETE("/:id", customerAdmin, h.Quotes.Delete)
	}
}

func addBillingRoutes(rg *gin.RouterGroup, h Handlers) {
	billings := rg.Group(PathBillings)
	{
		billings.GET("/:id", h.Billing.GetBilling)
		billings.GET("/:id/payment", h.Billing.GetPayment)
		billings.GET("/:id/invoice", h.Billing.Invoice)
		billings.POST("/:id/payments", adminOnly, h.Billing.RecordPayment)
		billings.POST("/:id/checkout", customerAdmin, h.Billing.Checkout)
	}
}
