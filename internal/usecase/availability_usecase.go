package usecase

import (
	"context"
	"strings"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	log "github.com/sirupsen/logrus"
)

// IAvailabilityUseCase answers whether a technician already holds an active
// booking on a calendar day of the shop's timezone.
type IAvailabilityUseCase interface {
	IsTechnicianBusy(ctx context.Context, technicianID string, day time.Time, excludingBookingID string) (*entities.BookingConflict, error)
	Location() *time.Location
}

type AvailabilityUseCase struct {
	repo    interfaces.IBookingRepository
	catalog interfaces.ICatalogRepository
	loc     *time.Location
}

var _ IAvailabilityUseCase = (*AvailabilityUseCase)(nil)

func NewAvailabilityUseCase(repo interfaces.IBookingRepository, catalog interfaces.ICatalogRepository, loc *time.Location) *AvailabilityUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &AvailabilityUseCase{repo: repo, catalog: catalog, loc: loc}
}

func (u *AvailabilityUseCase) Location() *time.Location {
	return u.loc
}

// IsTechnicianBusy returns the first active booking of technicianID scheduled
// inside day's [00:00:00.000, 23:59:59.999] window, or nil when the day is free.
func (u *AvailabilityUseCase) IsTechnicianBusy(ctx context.Context, technicianID string, day time.Time, excludingBookingID string) (*entities.BookingConflict, error) {
	technicianID = strings.TrimSpace(technicianID)
	if technicianID == "" {
		return nil, ErrInvalidID
	}
	from, to := entities.DayWindow(day, u.loc)

	bookings, err := u.repo.ListActiveByTechnician(ctx, technicianID, from, to)
	if err != nil {
		return nil, annotate(err, "listing bookings of technician %s", technicianID)
	}

	for _, b := range bookings {
		if b.ID == excludingBookingID || !b.Status.Active() {
			continue
		}
		if b.ScheduledAt.Before(from) || b.ScheduledAt.After(to) {
			continue
		}
		conflict, err := u.describe(ctx, b)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"technician_id": technicianID,
			"day":           from.Format("2006-01-02"),
			"booking_id":    b.ID,
		}).Debug("[booking][availability] technician busy")
		return &conflict, nil
	}
	return nil, nil
}

func (u *AvailabilityUseCase) describe(ctx context.Context, b entities.Booking) (entities.BookingConflict, error) {
	c := entities.BookingConflict{
		BookingID:    b.ID,
		TechnicianID: b.TechnicianID,
		CustomerID:   b.CustomerID,
		CustomerName: b.CustomerID,
		ServiceID:    b.ServiceID,
		ServiceName:  b.ServiceID,
		ScheduledAt:  b.ScheduledAt,
	}
	if u.catalog == nil {
		return c, nil
	}

	customer, err := u.catalog.GetUser(ctx, b.CustomerID)
	if err != nil {
		return entities.BookingConflict{}, annotate(err, "loading customer %s", b.CustomerID)
	}
	if customer.Name != "" {
		c.CustomerName = customer.Name
	}
	service, err := u.catalog.GetService(ctx, b.ServiceID)
	if err != nil {
		return entities.BookingConflict{}, annotate(err, "loading service %s", b.ServiceID)
	}
	if service.Name != "" {
		c.ServiceName = service.Name
	}
	return c, nil
}

// SlotKey names the lock guarding one technician's calendar day.
func SlotKey(technicianID string, day time.Time, loc *time.Location) string {
	return "technician:" + technicianID + ":" + entities.DayKey(day, loc)
}

type noopObserver struct{}

func (noopObserver) ObserveTransition(string, string) {}
func (noopObserver) ObserveSchedulingConflict()       {}
func (noopObserver) ObserveLockTimeout()              {}

func observerOrNoop(o interfaces.IWorkflowObserver) interfaces.IWorkflowObserver {
	if o == nil {
		return noopObserver{}
	}
	return o
}
