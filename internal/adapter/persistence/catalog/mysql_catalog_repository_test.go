package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"mecanica_booking/internal/domain/entities"

	"github.com/DATA-DOG/go-sqlmock"
)

func newRepo(t *testing.T) (*MySQLCatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMySQLCatalogRepository(db), mock
}

func TestMySQLCatalogRepository_GetService(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(queryService)).WithArgs("svc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "cost", "allow_customer_tech_choice"}).
			AddRow("svc-1", "Oil change", nil, 150.0, true))

	s, err := repo.GetService(context.Background(), "svc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "svc-1" || s.Name != "Oil change" || s.Cost != 150 || !s.AllowCustomerTechChoice || s.Description != "" {
		t.Fatalf("unexpected service: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLCatalogRepository_GetServiceMissing(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(queryService)).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "cost", "allow_customer_tech_choice"}))

	s, err := repo.GetService(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "" {
		t.Fatalf("expected zero service, got %+v", s)
	}
}

func TestMySQLCatalogRepository_GetCar(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(queryCar)).WithArgs("car-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "plate_no", "brand", "model", "year"}).
			AddRow("car-1", "cust-1", "ABC1234", "Toyota", "Corolla", "2019"))

	c, err := repo.GetCar(context.Background(), "car-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.OwnerID != "cust-1" || c.PlateNo != "ABC1234" || c.Year != "2019" {
		t.Fatalf("unexpected car: %+v", c)
	}
}

func TestMySQLCatalogRepository_GetUser(t *testing.T) {
	t.Run("technician", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(queryUser)).WithArgs("tech-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "role", "blocked"}).
				AddRow("tech-1", "Bruno", "bruno@shop.test", nil, "TECHNICIAN", false))

		u, err := repo.GetUser(context.Background(), "tech-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Role != entities.RoleTechnician || u.Email != "bruno@shop.test" || u.Phone != "" {
			t.Fatalf("unexpected user: %+v", u)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(queryUser)).WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "role", "blocked"}).
				AddRow("u-1", "X", nil, nil, "ROOT", false))

		if _, err := repo.GetUser(context.Background(), "u-1"); err == nil {
			t.Fatalf("expected error for unknown role")
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(queryUser)).WithArgs("u-1").WillReturnError(errors.New("db down"))

		_, err := repo.GetUser(context.Background(), "u-1")
		if err == nil || !regexp.MustCompile("db down").MatchString(err.Error()) {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}
