package usecase

import (
	"fmt"

	"mecanica_booking/internal/domain/entities"

	"github.com/juju/errors"
)

// Error kinds. Handlers map on these with errors.Is; the specific errors below
// wrap exactly one kind each.
const (
	ErrNotFound           = errors.ConstError("not found")
	ErrInvalidReference   = errors.ConstError("invalid reference")
	ErrPolicyViolation    = errors.ConstError("policy violation")
	ErrSchedulingConflict = errors.ConstError("scheduling conflict")
	ErrInvalidTransition  = errors.ConstError("invalid transition")
	ErrBusy               = errors.ConstError("busy")
	ErrInvalidArgument    = errors.ConstError("invalid argument")
)

var (
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrJobNotFound     = fmt.Errorf("job %w", ErrNotFound)
	ErrQuoteNotFound   = fmt.Errorf("quote %w", ErrNotFound)
	ErrBillingNotFound = fmt.Errorf("billing %w", ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)

	ErrUnknownService    = fmt.Errorf("service does not exist: %w", ErrInvalidReference)
	ErrUnknownCar        = fmt.Errorf("car does not exist: %w", ErrInvalidReference)
	ErrUnknownCustomer   = fmt.Errorf("customer does not exist: %w", ErrInvalidReference)
	ErrUnknownTechnician = fmt.Errorf("technician does not exist: %w", ErrInvalidReference)

	ErrTechnicianChoiceNotAllowed = fmt.Errorf("service does not allow choosing a technician: %w", ErrPolicyViolation)
	ErrBookingNotConfirmed        = fmt.Errorf("booking is not confirmed: %w", ErrPolicyViolation)
	ErrQuoteAlreadyExists         = fmt.Errorf("booking already has an active quote: %w", ErrPolicyViolation)
	ErrPaymentAmountMismatch      = fmt.Errorf("payment amount does not match billing total: %w", ErrPolicyViolation)
	ErrPaymentNotApproved         = fmt.Errorf("payment was not approved by the provider: %w", ErrPolicyViolation)

	ErrBillingAlreadyPaid = fmt.Errorf("billing already paid: %w", ErrInvalidTransition)
	ErrJobCompleted       = fmt.Errorf("job already at completion: %w", ErrInvalidTransition)

	ErrConcurrentUpdate = fmt.Errorf("record was modified concurrently: %w", ErrBusy)

	ErrInvalidID          = fmt.Errorf("id is required: %w", ErrInvalidArgument)
	ErrInvalidAmount      = fmt.Errorf("amount must be greater than zero: %w", ErrInvalidArgument)
	ErrInvalidSchedule    = fmt.Errorf("scheduled_at is required: %w", ErrInvalidArgument)
	ErrInvalidPaidAt      = fmt.Errorf("paid_at is required: %w", ErrInvalidArgument)
	ErrRejectReasonBlank  = fmt.Errorf("reject reason is required: %w", ErrInvalidArgument)
	ErrInvalidJobStage    = fmt.Errorf("unknown job stage: %w", ErrInvalidArgument)
	ErrInvalidProviderReq = fmt.Errorf("invalid payment provider payload: %w", ErrInvalidArgument)
)

// SchedulingConflictError reports a technician double-booking together with
// the booking that already holds the day.
type SchedulingConflictError struct {
	Conflict entities.BookingConflict
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("Technician already has a booking for %s with %s", e.Conflict.ServiceName, e.Conflict.CustomerName)
}

func (e *SchedulingConflictError) Unwrap() error {
	return ErrSchedulingConflict
}

// transitionError builds an InvalidTransition error for a booking status change.
func transitionError(from, to entities.BookingStatus) error {
	return fmt.Errorf("booking cannot go from %s to %s: %w", from, to, ErrInvalidTransition)
}

// annotate wraps an unexpected persistence or rendering failure. These never match a
// kind above and surface as internal errors.
func annotate(err error, format string, args ...any) error {
	return errors.Annotatef(err, format, args...)
}
