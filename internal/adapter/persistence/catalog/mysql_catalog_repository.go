// Package catalog reads the shop's reference data (services, cars, users)
// from MySQL. The booking service never writes to these tables.
package catalog

import (
	"context"
	"database/sql"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/juju/errors"
)

const (
	queryService = `SELECT id, name, description, cost, allow_customer_tech_choice FROM services WHERE id = ?`
	queryCar     = `SELECT id, owner_id, plate_no, brand, model, year FROM cars WHERE id = ?`
	queryUser    = `SELECT id, name, email, phone, role, blocked FROM users WHERE id = ?`
)

type MySQLCatalogRepository struct {
	db *sql.DB
}

var _ interfaces.ICatalogRepository = (*MySQLCatalogRepository)(nil)

func NewMySQLCatalogRepository(db *sql.DB) *MySQLCatalogRepository {
	return &MySQLCatalogRepository{db: db}
}

func (r *MySQLCatalogRepository) GetService(ctx context.Context, id string) (entities.Service, error) {
	var (
		s           entities.Service
		description sql.NullString
	)
	err := r.db.QueryRowContext(ctx, queryService, id).
		Scan(&s.ID, &s.Name, &description, &s.Cost, &s.AllowCustomerTechChoice)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Service{}, nil
	}
	if err != nil {
		return entities.Service{}, errors.Annotatef(err, "querying service %s", id)
	}
	s.Description = description.String
	return s, nil
}

func (r *MySQLCatalogRepository) GetCar(ctx context.Context, id string) (entities.Car, error) {
	var (
		c                   entities.Car
		plate, brand, model sql.NullString
		year                sql.NullString
	)
	err := r.db.QueryRowContext(ctx, queryCar, id).
		Scan(&c.ID, &c.OwnerID, &plate, &brand, &model, &year)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Car{}, nil
	}
	if err != nil {
		return entities.Car{}, errors.Annotatef(err, "querying car %s", id)
	}
	c.PlateNo, c.Brand, c.Model, c.Year = plate.String, brand.String, model.String, year.String
	return c, nil
}

func (r *MySQLCatalogRepository) GetUser(ctx context.Context, id string) (entities.User, error) {
	var (
		u            entities.User
		email, phone sql.NullString
		role         string
	)
	err := r.db.QueryRowContext(ctx, queryUser, id).
		Scan(&u.ID, &u.Name, &email, &phone, &role, &u.Blocked)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, nil
	}
	if err != nil {
		return entities.User{}, errors.Annotatef(err, "querying user %s", id)
	}
	parsed, ok := entities.ParseRole(role)
	if !ok {
		return entities.User{}, errors.NotValidf("role %q of user %s", role, id)
	}
	u.Email, u.Phone, u.Role = email.String, phone.String, parsed
	return u, nil
}
