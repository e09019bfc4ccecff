package memory

import (
	"context"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"
)

type CatalogRepository struct {
	s *Store
}

var _ interfaces.ICatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) GetService(_ context.Context, id string) (entities.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.services[id], nil
}

func (r *CatalogRepository) GetCar(_ context.Context, id string) (entities.Car, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.cars[id], nil
}

func (r *CatalogRepository) GetUser(_ context.Context, id string) (entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.users[id], nil
}
