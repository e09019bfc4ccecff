package handlers

import (
	"errors"
	"net/http"

	"mecanica_booking/internal/adapter/http/dto/response"
	"mecanica_booking/internal/adapter/http/middleware"
	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase"
	"mecanica_booking/pkg"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var (
	errInvalidRequest = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	errForbidden      = pkg.NewDomainErrorSimple("FORBIDDEN", "Not allowed to access this resource", http.StatusForbidden)
	errUnauthorized   = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
)

// mapError turns a use case error into the response the API promises for its kind.
func mapError(err error) *pkg.AppError {
	var conflict *usecase.SchedulingConflictError
	switch {
	case errors.As(err, &conflict):
		return pkg.NewDomainErrorSimple("SCHEDULING_CONFLICT", conflict.Error(), http.StatusConflict).
			WithDetails(response.FromConflict(conflict.Conflict))

	// Payment provider answers keep their own codes.
	case errors.Is(err, usecase.ErrPaymentGatewayCustomerNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_CUSTOMER_NOT_FOUND", "Payer not found for this Mercado Pago test context", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentGatewayInvalidUsers):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_INVALID_USERS", "Invalid users involved between seller token and payer test user", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentGatewayUnauthorized):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_UNAUTHORIZED", "Payment provider unauthorized", http.StatusBadGateway)
	case errors.Is(err, usecase.ErrPaymentGatewayNotConfigured):
		return pkg.NewDomainErrorSimple("PAYMENT_PROVIDER_UNAVAILABLE", "Payment provider not configured", http.StatusServiceUnavailable)
	case errors.Is(err, usecase.ErrInvoiceRendererNotConfigured):
		return pkg.NewDomainErrorSimple("INVOICE_UNAVAILABLE", "Invoice rendering not configured", http.StatusServiceUnavailable)

	case errors.Is(err, usecase.ErrNotFound):
		return pkg.NewDomainErrorSimple("NOT_FOUND", err.Error(), http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidReference):
		return pkg.NewDomainErrorSimple("INVALID_REFERENCE", err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, usecase.ErrPolicyViolation):
		return pkg.NewDomainErrorSimple("POLICY_VIOLATION", err.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrSchedulingConflict):
		return pkg.NewDomainErrorSimple("SCHEDULING_CONFLICT", err.Error(), http.StatusConflict)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", err.Error(), http.StatusConflict)
	case errors.Is(err, usecase.ErrBusy):
		return pkg.NewDomainErrorSimple("BUSY", "Resource is busy, try again", http.StatusServiceUnavailable)
	case errors.Is(err, usecase.ErrInvalidArgument):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", err.Error(), http.StatusBadRequest)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func respondError(c *gin.Context, err error, action string) {
	appErr := mapError(err)
	entry := log.WithFields(log.Fields{
		"request_id": middleware.GetRequestID(c),
		"code":       appErr.Code,
	}).WithError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		entry.Error(action + " failed")
	} else {
		entry.Info(action + " failed")
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func abortWith(c *gin.Context, appErr *pkg.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

// principal returns the caller, answering 401 when the route was mounted
// without Auth.
func principal(c *gin.Context) (middleware.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		abortWith(c, errUnauthorized)
	}
	return p, ok
}

// recordOwner names who may read a record: the customer it belongs to and the
// technician assigned to its booking.
type recordOwner struct {
	CustomerID   string
	TechnicianID string
}

func ownerOf(b entities.Booking) recordOwner {
	return recordOwner{CustomerID: b.CustomerID, TechnicianID: b.TechnicianID}
}

// accessCheck decides whether the caller may touch a record and aborts the
// request when not.
type accessCheck func(c *gin.Context, p middleware.Principal, owner recordOwner) bool

// ownsOrStaff lets admins through, customers only for their own records and
// technicians only for bookings assigned to them.
func ownsOrStaff(c *gin.Context, p middleware.Principal, owner recordOwner) bool {
	switch {
	case p.Is(entities.RoleAdmin):
		return true
	case p.Is(entities.RoleCustomer) && p.UserID == owner.CustomerID:
		return true
	case p.Is(entities.RoleTechnician) && owner.TechnicianID != "" && p.UserID == owner.TechnicianID:
		return true
	}
	abortWith(c, errForbidden)
	return false
}

// ownsOrAdmin is stricter: technicians may not act for customers.
func ownsOrAdmin(c *gin.Context, p middleware.Principal, owner recordOwner) bool {
	switch {
	case p.Is(entities.RoleAdmin):
		return true
	case p.Is(entities.RoleCustomer) && p.UserID == owner.CustomerID:
		return true
	}
	abortWith(c, errForbidden)
	return false
}

// ownerOfBooking builds the owner of a quote or billing. The booking is only
// loaded for technician callers, who are matched on its assignment.
func ownerOfBooking(c *gin.Context, p middleware.Principal, bookings usecase.IBookingUseCase, customerID, bookingID, action string) (recordOwner, bool) {
	owner := recordOwner{CustomerID: customerID}
	if !p.Is(entities.RoleTechnician) || bookings == nil {
		return owner, true
	}
	b, err := bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err, action)
		return recordOwner{}, false
	}
	owner.TechnicianID = b.TechnicianID
	return owner, true
}
