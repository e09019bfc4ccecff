package interfaces

import (
	"context"
	"time"

	"mecanica_booking/internal/domain/entities"
)

// IJobRepository abstracts persistence for Job. Jobs are only created
// through IBookingRepository.ConfirmWithJob.
type IJobRepository interface {
	GetByID(ctx context.Context, id string) (entities.Job, error)
	GetByBookingID(ctx context.Context, bookingID string) (entities.Job, error)
	// UpdateStage moves the job from one stage to another; ErrStaleWrite when the job is not at from.
	UpdateStage(ctx context.Context, id string, from, to entities.JobStage, at time.Time) (entities.Job, error)
	// AppendNote returns a zero-value Job when the job does not exist.
	AppendNote(ctx context.Context, id string, note entities.JobNote) (entities.Job, error)
}
