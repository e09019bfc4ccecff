package memory

import (
	"context"
	"time"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"
)

type JobRepository struct {
	s *Store
}

var _ interfaces.IJobRepository = (*JobRepository)(nil)

func (r *JobRepository) GetByID(_ context.Context, id string) (entities.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return entities.Job{}, nil
	}
	return copyJob(j), nil
}

func (r *JobRepository) GetByBookingID(_ context.Context, bookingID string) (entities.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.jobByBooking[bookingID]
	if !ok {
		return entities.Job{}, nil
	}
	return copyJob(r.s.jobs[id]), nil
}

func (r *JobRepository) UpdateStage(_ context.Context, id string, from, to entities.JobStage, at time.Time) (entities.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok || j.Stage != from {
		return entities.Job{}, interfaces.ErrStaleWrite
	}
	j.Stage = to
	j.UpdatedAt = at
	r.s.jobs[id] = j
	return copyJob(j), nil
}

func (r *JobRepository) AppendNote(_ context.Context, id string, note entities.JobNote) (entities.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return entities.Job{}, nil
	}
	j = copyJob(j)
	j.Notes = append(j.Notes, note)
	j.UpdatedAt = note.CreatedAt
	r.s.jobs[id] = j
	return copyJob(j), nil
}
