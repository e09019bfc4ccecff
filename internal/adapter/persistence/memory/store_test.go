package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func pendingBooking(id, tech string, at time.Time) entities.Booking {
	return entities.Booking{
		ID:           id,
		CustomerID:   "cust-1",
		CarID:        "car-1",
		ServiceID:    "svc-1",
		TechnicianID: tech,
		ScheduledAt:  at,
		Status:       entities.BookingStatusPending,
		Version:      1,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func TestBookingRepository_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()
	b, err := repo.Create(ctx, pendingBooking("b-1", "", day.Add(9*time.Hour)))
	require.NoError(t, err)

	b.TechnicianID = "tech-1"
	updated, err := repo.Update(ctx, b, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	_, err = repo.Update(ctx, b, 1)
	assert.ErrorIs(t, err, interfaces.ErrStaleWrite)

	_, err = repo.Create(ctx, b)
	assert.True(t, errors.Is(err, errors.AlreadyExists))
}

func TestBookingRepository_ConfirmWithJob(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings, jobs := store.Bookings(), store.Jobs()
	b, err := bookings.Create(ctx, pendingBooking("b-1", "tech-1", day.Add(9*time.Hour)))
	require.NoError(t, err)

	b.Status = entities.BookingStatusConfirmed
	job := entities.Job{ID: "job-1", BookingID: b.ID, Stage: entities.JobStageDiagnostic}
	require.NoError(t, bookings.ConfirmWithJob(ctx, b, 1, job))

	got, err := jobs.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.ID)

	// a second confirmation of the same booking never creates a second job
	err = bookings.ConfirmWithJob(ctx, b, 2, entities.Job{ID: "job-2", BookingID: b.ID})
	assert.ErrorIs(t, err, interfaces.ErrStaleWrite)
	missing, err := jobs.GetByID(ctx, "job-2")
	require.NoError(t, err)
	assert.Empty(t, missing.ID)
}

func TestBookingRepository_ListActiveByTechnician(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()

	require.NoError(t, createAll(ctx, repo,
		pendingBooking("b-morning", "tech-1", day.Add(8*time.Hour)),
		pendingBooking("b-midnight", "tech-1", day),
		pendingBooking("b-next-day", "tech-1", day.Add(24*time.Hour)),
		pendingBooking("b-other-tech", "tech-2", day.Add(10*time.Hour)),
	))
	cancelled := pendingBooking("b-cancelled", "tech-1", day.Add(11*time.Hour))
	cancelled.Status = entities.BookingStatusCancelled
	require.NoError(t, createAll(ctx, repo, cancelled))

	from, to := entities.DayWindow(day.Add(12*time.Hour), time.UTC)
	out, err := repo.ListActiveByTechnician(ctx, "tech-1", from, to)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b-midnight", out[0].ID)
	assert.Equal(t, "b-morning", out[1].ID)
}

func TestBookingRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()
	older := pendingBooking("b-older", "tech-1", day.Add(8*time.Hour))
	newer := pendingBooking("b-newer", "tech-2", day.Add(9*time.Hour))
	require.NoError(t, createAll(ctx, repo, older, newer))

	all, err := repo.List(ctx, interfaces.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b-newer", all[0].ID)

	mine, err := repo.List(ctx, interfaces.BookingFilter{TechnicianID: "tech-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "b-older", mine[0].ID)

	none, err := repo.List(ctx, interfaces.BookingFilter{Status: entities.BookingStatusConfirmed})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQuoteRepository_OneActiveQuotePerBooking(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings, quotes := store.Bookings(), store.Quotes()

	_, err := quotes.CreateForBooking(ctx, entities.Quote{ID: "q-0", BookingID: "b-1"})
	assert.ErrorIs(t, err, interfaces.ErrStaleWrite, "unknown booking")

	b := pendingBooking("b-1", "tech-1", day.Add(9*time.Hour))
	b.Status = entities.BookingStatusConfirmed
	require.NoError(t, createAll(ctx, bookings, b))

	q1 := entities.Quote{ID: "q-1", BookingID: "b-1", Total: 100, Status: entities.QuoteStatusPending}
	_, err = quotes.CreateForBooking(ctx, q1)
	require.NoError(t, err)

	_, err = quotes.CreateForBooking(ctx, entities.Quote{ID: "q-2", BookingID: "b-1", Status: entities.QuoteStatusPending})
	assert.ErrorIs(t, err, interfaces.ErrStaleWrite)

	// an unrelated booking update keeps the quote pointer
	cur, err := bookings.GetByID(ctx, "b-1")
	require.NoError(t, err)
	cur.ActiveQuoteID = ""
	_, err = bookings.Update(ctx, cur, cur.Version)
	require.NoError(t, err)
	cur, err = bookings.GetByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "q-1", cur.ActiveQuoteID)

	require.NoError(t, quotes.DeletePending(ctx, q1))
	cur, err = bookings.GetByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Empty(t, cur.ActiveQuoteID)
	gone, err := quotes.GetByBookingID(ctx, "b-1")
	require.NoError(t, err)
	assert.Empty(t, gone.ID)

	_, err = quotes.CreateForBooking(ctx, entities.Quote{ID: "q-3", BookingID: "b-1", Status: entities.QuoteStatusPending})
	assert.NoError(t, err)
}

func TestQuoteRepository_ApproveWithBillingOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	b := pendingBooking("b-1", "tech-1", day.Add(9*time.Hour))
	b.Status = entities.BookingStatusConfirmed
	require.NoError(t, createAll(ctx, store.Bookings(), b))
	_, err := store.Quotes().CreateForBooking(ctx, entities.Quote{ID: "q-1", BookingID: "b-1", Total: 250, Status: entities.QuoteStatusPending})
	require.NoError(t, err)

	at := day.Add(10 * time.Hour)
	billing := entities.Billing{ID: "bill-1", QuoteID: "q-1", BookingID: "b-1", Total: 250, Status: entities.BillingStatusUnpaid, CreatedAt: at}
	q, err := store.Quotes().ApproveWithBilling(ctx, "q-1", billing, at)
	require.NoError(t, err)
	assert.Equal(t, entities.QuoteStatusApproved, q.Status)

	_, err = store.Quotes().ApproveWithBilling(ctx, "q-1", entities.Billing{ID: "bill-2", QuoteID: "q-1"}, at)
	assert.ErrorIs(t, err, interfaces.ErrStaleWrite)
	assert.ErrorIs(t, store.Quotes().DeletePending(ctx, q), interfaces.ErrStaleWrite)

	got, err := store.Billing().GetBillingByQuoteID(ctx, "q-1")
	require.NoError(t, err)
	assert.Equal(t, "bill-1", got.ID)
}

func TestBillingRepository_SettleWithPaymentOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	b := pendingBooking("b-1", "tech-1", day.Add(9*time.Hour))
	b.Status = entities.BookingStatusConfirmed
	require.NoError(t, createAll(ctx, store.Bookings(), b))
	_, err := store.Quotes().CreateForBooking(ctx, entities.Quote{ID: "q-1", BookingID: "b-1", Total: 80, Status: entities.QuoteStatusPending})
	require.NoError(t, err)
	_, err = store.Quotes().ApproveWithBilling(ctx, "q-1", entities.Billing{ID: "bill-1", QuoteID: "q-1", Total: 80, Status: entities.BillingStatusUnpaid}, day)
	require.NoError(t, err)

	paidAt := day.Add(15 * time.Hour)
	settled, err := store.Billing().SettleWithPayment(ctx, "bill-1", entities.Payment{ID: "pay-1", BillingID: "bill-1", Amount: 80, PaidAt: paidAt})
	require.NoError(t, err)
	require.NotNil(t, settled.PaidAt)
	assert.True(t, settled.PaidAt.Equal(paidAt))

	_, err = store.Billing().SettleWithPayment(ctx, "bill-1", entities.Payment{ID: "pay-2", BillingID: "bill-1", Amount: 80, PaidAt: paidAt})
	assert.ErrorIs(t, err, interfaces.ErrStaleWrite)

	p, err := store.Billing().GetPaymentByBillingID(ctx, "bill-1")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", p.ID)
}

func TestJobRepository_StageAndNotes(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	b := pendingBooking("b-1", "tech-1", day.Add(9*time.Hour))
	require.NoError(t, createAll(ctx, store.Bookings(), b))
	b.Status = entities.BookingStatusConfirmed
	require.NoError(t, store.Bookings().ConfirmWithJob(ctx, b, 1, entities.Job{ID: "job-1", BookingID: "b-1", Stage: entities.JobStageDiagnostic}))

	jobs := store.Jobs()
	_, err := jobs.UpdateStage(ctx, "job-1", entities.JobStageRepair, entities.JobStageTesting, day)
	assert.ErrorIs(t, err, interfaces.ErrStaleWrite)

	j, err := jobs.UpdateStage(ctx, "job-1", entities.JobStageDiagnostic, entities.JobStageRepair, day)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStageRepair, j.Stage)

	j, err = jobs.AppendNote(ctx, "job-1", entities.JobNote{AuthorID: "tech-1", Text: "first", CreatedAt: day})
	require.NoError(t, err)
	j.Notes[0].Text = "mutated by caller"

	j, err = jobs.AppendNote(ctx, "job-1", entities.JobNote{AuthorID: "tech-1", Text: "second", CreatedAt: day.Add(time.Minute)})
	require.NoError(t, err)
	require.Len(t, j.Notes, 2)
	assert.Equal(t, "first", j.Notes[0].Text)
	assert.Equal(t, "second", j.Notes[1].Text)

	missing, err := jobs.AppendNote(ctx, "job-x", entities.JobNote{Text: "lost"})
	require.NoError(t, err)
	assert.Empty(t, missing.ID)
}

func TestStore_LoadCatalogFile(t *testing.T) {
	seed := CatalogSeed{
		Services: []entities.Service{{ID: "svc-1", Name: "Oil change", Cost: 90, AllowCustomerTechChoice: true}},
		Cars:     []entities.Car{{ID: "car-1", OwnerID: "cust-1", PlateNo: "ABC1D23"}},
		Users:    []entities.User{{ID: "tech-1", Name: "Ana", Role: entities.RoleTechnician}},
	}
	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	store := NewStore()
	require.NoError(t, store.LoadCatalogFile(path))

	ctx := context.Background()
	svc, err := store.Catalog().GetService(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, "Oil change", svc.Name)
	user, err := store.Catalog().GetUser(ctx, "tech-1")
	require.NoError(t, err)
	assert.Equal(t, entities.RoleTechnician, user.Role)
}

func TestStore_LoadCatalogFileRejectsUnknownRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"id":"u-1","role":"MECHANIC"}]}`), 0o600))

	err := NewStore().LoadCatalogFile(path)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func createAll(ctx context.Context, repo *BookingRepository, bookings ...entities.Booking) error {
	for _, b := range bookings {
		if _, err := repo.Create(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
