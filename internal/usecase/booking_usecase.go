package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/juju/clock"
	log "github.com/sirupsen/logrus"
)

var ErrCarNotOwned = fmt.Errorf("car does not belong to customer: %w", ErrInvalidReference)

// CreateBookingInput carries a customer's booking request.
type CreateBookingInput struct {
	CustomerID   string
	CarID        string
	ServiceID    string
	ScheduledAt  time.Time
	TechnicianID string
}

// IBookingUseCase owns the booking lifecycle.
//
//	PENDING   -> CONFIRMED | REJECTED | CANCELLED
//	CONFIRMED -> CANCELLED
//
// Every write that can place a technician on a day (create with technician,
// assign, reschedule) runs its availability check and commit while holding the
// technician's day slot.
type IBookingUseCase interface {
	Create(ctx context.Context, in CreateBookingInput) (entities.Booking, error)
	AssignTechnician(ctx context.Context, bookingID, technicianID string) (entities.Booking, error)
	Confirm(ctx context.Context, bookingID string) (entities.Booking, entities.Job, error)
	Reject(ctx context.Context, bookingID, reason string) (entities.Booking, error)
	Cancel(ctx context.Context, bookingID string) (entities.Booking, error)
	Reschedule(ctx context.Context, bookingID string, scheduledAt time.Time) (entities.Booking, error)
	GetByID(ctx context.Context, id string) (entities.Booking, error)
	List(ctx context.Context, q ListBookingsQuery) ([]BookingListItem, error)
}

type BookingUseCase struct {
	repo         interfaces.IBookingRepository
	jobRepo      interfaces.IJobRepository
	catalog      interfaces.ICatalogRepository
	availability IAvailabilityUseCase
	locker       interfaces.ISlotLocker
	clock        clock.Clock
	observer     interfaces.IWorkflowObserver
}

var _ IBookingUseCase = (*BookingUseCase)(nil)

func NewBookingUseCase(
	repo interfaces.IBookingRepository,
	jobRepo interfaces.IJobRepository,
	catalog interfaces.ICatalogRepository,
	availability IAvailabilityUseCase,
	locker interfaces.ISlotLocker,
	clk clock.Clock,
	observer interfaces.IWorkflowObserver,
) *BookingUseCase {
	if clk == nil {
		clk = clock.WallClock
	}
	return &BookingUseCase{
		repo:         repo,
		jobRepo:      jobRepo,
		catalog:      catalog,
		availability: availability,
		locker:       locker,
		clock:        clk,
		observer:     observerOrNoop(observer),
	}
}

func (u *BookingUseCase) Create(ctx context.Context, in CreateBookingInput) (entities.Booking, error) {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	in.CarID = strings.TrimSpace(in.CarID)
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	in.TechnicianID = strings.TrimSpace(in.TechnicianID)
	if in.CustomerID == "" || in.CarID == "" || in.ServiceID == "" {
		return entities.Booking{}, ErrInvalidID
	}
	if in.ScheduledAt.IsZero() {
		return entities.Booking{}, ErrInvalidSchedule
	}

	service, err := u.catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return entities.Booking{}, annotate(err, "loading service %s", in.ServiceID)
	}
	if service.ID == "" {
		return entities.Booking{}, ErrUnknownService
	}
	car, err := u.catalog.GetCar(ctx, in.CarID)
	if err != nil {
		return entities.Booking{}, annotate(err, "loading car %s", in.CarID)
	}
	if car.ID == "" {
		return entities.Booking{}, ErrUnknownCar
	}
	if car.OwnerID != "" && car.OwnerID != in.CustomerID {
		return entities.Booking{}, ErrCarNotOwned
	}

	if in.TechnicianID != "" {
		if !service.AllowCustomerTechChoice {
			return entities.Booking{}, ErrTechnicianChoiceNotAllowed
		}
		if err := u.ensureTechnician(ctx, in.TechnicianID); err != nil {
			return entities.Booking{}, err
		}
	}

	now := u.clock.Now().UTC()
	b := entities.Booking{
		ID:           uuid.NewString(),
		CustomerID:   in.CustomerID,
		CarID:        in.CarID,
		ServiceID:    in.ServiceID,
		ScheduledAt:  entities.ScheduleInstant(in.ScheduledAt),
		Status:       entities.BookingStatusPending,
		TechnicianID: in.TechnicianID,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	persist := func(ctx context.Context) error {
		created, err := u.repo.Create(ctx, b)
		if err != nil {
			return annotate(err, "creating booking %s", b.ID)
		}
		b = created
		return nil
	}

	if b.TechnicianID == "" {
		err = persist(ctx)
	} else {
		err = u.withSlot(ctx, b.TechnicianID, b.ScheduledAt, func(ctx context.Context) error {
			if err := u.checkFree(ctx, b.TechnicianID, b.ScheduledAt, ""); err != nil {
				return err
			}
			return persist(ctx)
		})
	}
	if err != nil {
		return entities.Booking{}, err
	}

	u.observer.ObserveTransition("booking", "create")
	log.WithFields(log.Fields{
		"booking_id":    b.ID,
		"customer_id":   b.CustomerID,
		"service_id":    b.ServiceID,
		"technician_id": b.TechnicianID,
	}).Info("[booking][usecase] create success")
	return b, nil
}

func (u *BookingUseCase) AssignTechnician(ctx context.Context, bookingID, technicianID string) (entities.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	technicianID = strings.TrimSpace(technicianID)
	if bookingID == "" || technicianID == "" {
		return entities.Booking{}, ErrInvalidID
	}

	b, err := u.load(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}
	if !b.Status.Active() {
		return entities.Booking{}, inactiveError(b.Status)
	}
	if err := u.ensureTechnician(ctx, technicianID); err != nil {
		return entities.Booking{}, err
	}

	err = u.withSlot(ctx, technicianID, b.ScheduledAt, func(ctx context.Context) error {
		// Re-read under the slot: the check and the commit must see the same booking.
		cur, err := u.load(ctx, bookingID)
		if err != nil {
			return err
		}
		if !cur.Status.Active() {
			return inactiveError(cur.Status)
		}
		if entities.DayKey(cur.ScheduledAt, u.availability.Location()) != entities.DayKey(b.ScheduledAt, u.availability.Location()) {
			return ErrConcurrentUpdate
		}
		if cur.TechnicianID == technicianID {
			b = cur
			return nil
		}
		if err := u.checkFree(ctx, technicianID, cur.ScheduledAt, cur.ID); err != nil {
			return err
		}

		expected := cur.Version
		cur.TechnicianID = technicianID
		cur.UpdatedAt = u.clock.Now().UTC()
		updated, err := u.repo.Update(ctx, cur, expected)
		if err != nil {
			return u.writeError(ctx, err, bookingID, "")
		}
		b = updated
		return nil
	})
	if err != nil {
		log.WithFields(log.Fields{"booking_id": bookingID, "technician_id": technicianID}).
			WithError(err).Info("[booking][usecase] assign failed")
		return entities.Booking{}, err
	}

	u.observer.ObserveTransition("booking", "assign")
	log.WithFields(log.Fields{"booking_id": b.ID, "technician_id": technicianID}).Info("[booking][usecase] assign success")
	return b, nil
}

// Confirm moves a PENDING booking to CONFIRMED and creates its job at DIAGNOSTIC
// in the same write. A booking is never confirmed twice, so it never gets a
// second job.
func (u *BookingUseCase) Confirm(ctx context.Context, bookingID string) (entities.Booking, entities.Job, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return entities.Booking{}, entities.Job{}, ErrInvalidID
	}

	b, err := u.load(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, entities.Job{}, err
	}
	if !b.Status.CanTransitionTo(entities.BookingStatusConfirmed) {
		return entities.Booking{}, entities.Job{}, transitionError(b.Status, entities.BookingStatusConfirmed)
	}

	now := u.clock.Now().UTC()
	job := entities.Job{
		ID:        uuid.NewString(),
		BookingID: b.ID,
		Stage:     entities.JobStageDiagnostic,
		Notes:     []entities.JobNote{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	expected := b.Version
	b.Status = entities.BookingStatusConfirmed
	b.UpdatedAt = now
	b.Version = expected + 1

	if err := u.repo.ConfirmWithJob(ctx, b, expected, job); err != nil {
		return entities.Booking{}, entities.Job{}, u.writeError(ctx, err, bookingID, entities.BookingStatusConfirmed)
	}

	u.observer.ObserveTransition("booking", "confirm")
	log.WithFields(log.Fields{"booking_id": b.ID, "job_id": job.ID}).Info("[booking][usecase] confirm success")
	return b, job, nil
}

func (u *BookingUseCase) Reject(ctx context.Context, bookingID, reason string) (entities.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return entities.Booking{}, ErrRejectReasonBlank
	}
	return u.transition(ctx, bookingID, entities.BookingStatusRejected, func(b *entities.Booking) {
		b.RejectReason = reason
	})
}

func (u *BookingUseCase) Cancel(ctx context.Context, bookingID string) (entities.Booking, error) {
	return u.transition(ctx, bookingID, entities.BookingStatusCancelled, nil)
}

func (u *BookingUseCase) transition(ctx context.Context, bookingID string, to entities.BookingStatus, mutate func(*entities.Booking)) (entities.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return entities.Booking{}, ErrInvalidID
	}

	b, err := u.load(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}
	if !b.Status.CanTransitionTo(to) {
		return entities.Booking{}, transitionError(b.Status, to)
	}

	expected := b.Version
	b.Status = to
	b.UpdatedAt = u.clock.Now().UTC()
	if mutate != nil {
		mutate(&b)
	}
	updated, err := u.repo.Update(ctx, b, expected)
	if err != nil {
		return entities.Booking{}, u.writeError(ctx, err, bookingID, to)
	}

	u.observer.ObserveTransition("booking", strings.ToLower(string(to)))
	log.WithFields(log.Fields{"booking_id": updated.ID, "status": updated.Status}).Info("[booking][usecase] transition success")
	return updated, nil
}

func (u *BookingUseCase) Reschedule(ctx context.Context, bookingID string, scheduledAt time.Time) (entities.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return entities.Booking{}, ErrInvalidID
	}
	if scheduledAt.IsZero() {
		return entities.Booking{}, ErrInvalidSchedule
	}
	scheduledAt = entities.ScheduleInstant(scheduledAt)

	b, err := u.load(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}
	if !b.Status.Active() {
		return entities.Booking{}, inactiveError(b.Status)
	}

	commit := func(ctx context.Context, cur entities.Booking) error {
		expected := cur.Version
		cur.ScheduledAt = scheduledAt
		cur.UpdatedAt = u.clock.Now().UTC()
		updated, err := u.repo.Update(ctx, cur, expected)
		if err != nil {
			return u.writeError(ctx, err, bookingID, "")
		}
		b = updated
		return nil
	}

	if b.TechnicianID == "" {
		err = commit(ctx, b)
	} else {
		technicianID := b.TechnicianID
		err = u.withSlot(ctx, technicianID, scheduledAt, func(ctx context.Context) error {
			cur, err := u.load(ctx, bookingID)
			if err != nil {
				return err
			}
			if !cur.Status.Active() {
				return inactiveError(cur.Status)
			}
			if cur.TechnicianID != technicianID {
				return ErrConcurrentUpdate
			}
			if err := u.checkFree(ctx, technicianID, scheduledAt, cur.ID); err != nil {
				return err
			}
			return commit(ctx, cur)
		})
	}
	if err != nil {
		log.WithFields(log.Fields{"booking_id": bookingID}).WithError(err).Info("[booking][usecase] reschedule failed")
		return entities.Booking{}, err
	}

	u.observer.ObserveTransition("booking", "reschedule")
	log.WithFields(log.Fields{"booking_id": b.ID, "scheduled_at": b.ScheduledAt}).Info("[booking][usecase] reschedule success")
	return b, nil
}

func (u *BookingUseCase) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Booking{}, ErrInvalidID
	}
	return u.load(ctx, id)
}

func (u *BookingUseCase) load(ctx context.Context, id string) (entities.Booking, error) {
	b, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Booking{}, annotate(err, "loading booking %s", id)
	}
	if b.ID == "" {
		return entities.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (u *BookingUseCase) ensureTechnician(ctx context.Context, technicianID string) error {
	tech, err := u.catalog.GetUser(ctx, technicianID)
	if err != nil {
		return annotate(err, "loading technician %s", technicianID)
	}
	if tech.ID == "" || tech.Role != entities.RoleTechnician || tech.Blocked {
		return ErrUnknownTechnician
	}
	return nil
}

func (u *BookingUseCase) withSlot(ctx context.Context, technicianID string, day time.Time, fn func(ctx context.Context) error) error {
	key := SlotKey(technicianID, day, u.availability.Location())
	release, err := u.locker.Acquire(ctx, key)
	if err != nil {
		u.observer.ObserveLockTimeout()
		log.WithFields(log.Fields{"slot": key}).WithError(err).Warn("[booking][usecase] slot acquire failed")
		return fmt.Errorf("scheduling slot %s unavailable (%v): %w", key, err, ErrBusy)
	}
	defer release()
	return fn(ctx)
}

func (u *BookingUseCase) checkFree(ctx context.Context, technicianID string, day time.Time, excludingBookingID string) error {
	conflict, err := u.availability.IsTechnicianBusy(ctx, technicianID, day, excludingBookingID)
	if err != nil {
		return err
	}
	if conflict != nil {
		u.observer.ObserveSchedulingConflict()
		return &SchedulingConflictError{Conflict: *conflict}
	}
	return nil
}

// writeError classifies a failed conditional write. When the stored booking
// moved on and no longer allows the wanted status, the caller gets the
// transition error it would have got had it read the newer state.
func (u *BookingUseCase) writeError(ctx context.Context, err error, bookingID string, to entities.BookingStatus) error {
	if !errors.Is(err, interfaces.ErrStaleWrite) {
		return annotate(err, "writing booking %s", bookingID)
	}
	cur, loadErr := u.load(ctx, bookingID)
	if loadErr != nil {
		return loadErr
	}
	if to != "" && !cur.Status.CanTransitionTo(to) {
		return transitionError(cur.Status, to)
	}
	if to == "" && !cur.Status.Active() {
		return inactiveError(cur.Status)
	}
	return ErrConcurrentUpdate
}

func inactiveError(status entities.BookingStatus) error {
	return fmt.Errorf("booking is %s: %w", status, ErrInvalidTransition)
}
