// Package memory is an in-process store implementing every repository
// interface. Multi-record writes happen under one mutex, so they are atomic
// with respect to every reader and writer of the store.
package memory

import (
	"encoding/json"
	"os"
	"sync"

	"mecanica_booking/internal/domain/entities"

	"github.com/juju/errors"
)

type Store struct {
	mu sync.RWMutex

	bookings map[string]entities.Booking
	jobs     map[string]entities.Job
	quotes   map[string]entities.Quote
	billings map[string]entities.Billing
	payments map[string]entities.Payment

	jobByBooking     map[string]string
	quoteByBooking   map[string]string
	billingByQuote   map[string]string
	paymentByBilling map[string]string

	services map[string]entities.Service
	cars     map[string]entities.Car
	users    map[string]entities.User
}

func NewStore() *Store {
	return &Store{
		bookings:         map[string]entities.Booking{},
		jobs:             map[string]entities.Job{},
		quotes:           map[string]entities.Quote{},
		billings:         map[string]entities.Billing{},
		payments:         map[string]entities.Payment{},
		jobByBooking:     map[string]string{},
		quoteByBooking:   map[string]string{},
		billingByQuote:   map[string]string{},
		paymentByBilling: map[string]string{},
		services:         map[string]entities.Service{},
		cars:             map[string]entities.Car{},
		users:            map[string]entities.User{},
	}
}

func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }
func (s *Store) Jobs() *JobRepository         { return &JobRepository{s: s} }
func (s *Store) Quotes() *QuoteRepository     { return &QuoteRepository{s: s} }
func (s *Store) Billing() *BillingRepository  { return &BillingRepository{s: s} }
func (s *Store) Catalog() *CatalogRepository  { return &CatalogRepository{s: s} }

// CatalogSeed is the JSON shape accepted by LoadCatalogFile.
type CatalogSeed struct {
	Services []entities.Service `json:"services"`
	Cars     []entities.Car     `json:"cars"`
	Users    []entities.User    `json:"users"`
}

// Seed adds reference data, replacing records with the same id.
func (s *Store) Seed(seed CatalogSeed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sv := range seed.Services {
		s.services[sv.ID] = sv
	}
	for _, c := range seed.Cars {
		s.cars[c.ID] = c
	}
	for _, u := range seed.Users {
		s.users[u.ID] = u
	}
}

func (s *Store) LoadCatalogFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Annotatef(err, "reading catalog seed %s", path)
	}
	var seed CatalogSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return errors.Annotatef(err, "decoding catalog seed %s", path)
	}
	for _, u := range seed.Users {
		if _, ok := entities.ParseRole(string(u.Role)); !ok {
			return errors.NotValidf("role %q of user %s", u.Role, u.ID)
		}
	}
	s.Seed(seed)
	return nil
}

func copyJob(j entities.Job) entities.Job {
	notes := make([]entities.JobNote, len(j.Notes))
	copy(notes, j.Notes)
	j.Notes = notes
	return j
}

func copyBilling(b entities.Billing) entities.Billing {
	if b.PaidAt != nil {
		t := *b.PaidAt
		b.PaidAt = &t
	}
	return b
}

func copyPayment(p entities.Payment) entities.Payment {
	if p.ProviderPayloadRaw != nil {
		p.ProviderPayloadRaw = append(json.RawMessage(nil), p.ProviderPayloadRaw...)
	}
	return p
}
