package interfaces

import (
	"context"

	"mecanica_booking/internal/domain/entities"
)

// ICatalogRepository reads reference data (services, cars, users).
// Lookups return a zero value when the record does not exist.
type ICatalogRepository interface {
	GetService(ctx context.Context, id string) (entities.Service, error)
	GetCar(ctx context.Context, id string) (entities.Car, error)
	GetUser(ctx context.Context, id string) (entities.User, error)
}
