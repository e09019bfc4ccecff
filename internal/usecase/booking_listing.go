package usecase

import (
	"context"
	"fmt"
	"sort"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"
)

var (
	ErrUnknownSort   = fmt.Errorf("unknown sort: %w", ErrInvalidArgument)
	ErrUnknownStatus = fmt.Errorf("unknown booking status: %w", ErrInvalidArgument)
	ErrUnknownRole   = fmt.Errorf("unknown role: %w", ErrInvalidArgument)
)

// BookingSort names a listing order.
type BookingSort string

const (
	// SortWorkQueue is the default staff view: bookings whose job reached
	// COMPLETION first, then PENDING bookings, then everything else; newest
	// first inside each group.
	SortWorkQueue       BookingSort = "work_queue"
	SortLatest          BookingSort = "latest"
	SortOldest          BookingSort = "oldest"
	SortScheduledLatest BookingSort = "scheduled_latest"
	SortScheduledOldest BookingSort = "scheduled_oldest"
)

// ParseBookingSort maps a query value to a BookingSort; empty means SortWorkQueue.
func ParseBookingSort(s string) (BookingSort, bool) {
	switch v := BookingSort(s); v {
	case "":
		return SortWorkQueue, true
	case SortWorkQueue, SortLatest, SortOldest, SortScheduledLatest, SortScheduledOldest:
		return v, true
	}
	return "", false
}

// Viewer is the authenticated caller on whose behalf a listing runs.
type Viewer struct {
	UserID string
	Role   entities.Role
}

type ListBookingsQuery struct {
	Viewer Viewer
	Status entities.BookingStatus
	Sort   BookingSort
}

// BookingListItem is a booking with the stage of its job, if it has one.
type BookingListItem struct {
	entities.Booking
	JobStage entities.JobStage `json:"job_stage,omitempty"`
}

// List returns the bookings visible to the viewer: customers see their own,
// technicians see those assigned to them, admins see all.
func (u *BookingUseCase) List(ctx context.Context, q ListBookingsQuery) ([]BookingListItem, error) {
	order, ok := ParseBookingSort(string(q.Sort))
	if !ok {
		return nil, ErrUnknownSort
	}
	if q.Status != "" {
		if _, ok := entities.ParseBookingStatus(string(q.Status)); !ok {
			return nil, ErrUnknownStatus
		}
	}

	filter := interfaces.BookingFilter{Status: q.Status}
	switch q.Viewer.Role {
	case entities.RoleCustomer:
		filter.CustomerID = q.Viewer.UserID
	case entities.RoleTechnician:
		filter.TechnicianID = q.Viewer.UserID
	case entities.RoleAdmin:
	default:
		return nil, ErrUnknownRole
	}

	bookings, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, annotate(err, "listing bookings")
	}

	items := make([]BookingListItem, 0, len(bookings))
	for _, b := range bookings {
		item := BookingListItem{Booking: b}
		// Only bookings that were confirmed at some point carry a job.
		if b.Status == entities.BookingStatusConfirmed || b.Status == entities.BookingStatusCancelled {
			job, err := u.jobRepo.GetByBookingID(ctx, b.ID)
			if err != nil {
				return nil, annotate(err, "loading job of booking %s", b.ID)
			}
			item.JobStage = job.Stage
		}
		items = append(items, item)
	}

	sortBookings(items, order)
	return items, nil
}

func sortBookings(items []BookingListItem, order BookingSort) {
	newest := func(a, b BookingListItem) bool { return a.CreatedAt.After(b.CreatedAt) }
	var less func(a, b BookingListItem) bool
	switch order {
	case SortLatest:
		less = newest
	case SortOldest:
		less = func(a, b BookingListItem) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortScheduledLatest:
		less = func(a, b BookingListItem) bool { return a.ScheduledAt.After(b.ScheduledAt) }
	case SortScheduledOldest:
		less = func(a, b BookingListItem) bool { return a.ScheduledAt.Before(b.ScheduledAt) }
	default:
		less = func(a, b BookingListItem) bool {
			if ra, rb := workQueueRank(a), workQueueRank(b); ra != rb {
				return ra < rb
			}
			return newest(a, b)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func workQueueRank(item BookingListItem) int {
	switch {
	case item.JobStage == entities.JobStageCompletion:
		return 0
	case item.Status == entities.BookingStatusPending:
		return 1
	default:
		return 2
	}
}
