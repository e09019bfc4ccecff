package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mecanica_booking/internal/domain/entities"
	"mecanica_booking/internal/usecase/interfaces"

	"github.com/juju/clock"
	log "github.com/sirupsen/logrus"
)

// IJobUseCase tracks the repair pipeline of a confirmed booking:
// DIAGNOSTIC -> REPAIR -> TESTING -> COMPLETION. Stages never move backwards.
type IJobUseCase interface {
	Advance(ctx context.Context, jobID string) (entities.Job, error)
	AdvanceTo(ctx context.Context, jobID string, stage entities.JobStage) (entities.Job, error)
	AddNote(ctx context.Context, jobID, authorID, text string) (entities.Job, error)
	GetByID(ctx context.Context, id string) (entities.Job, error)
	GetByBookingID(ctx context.Context, bookingID string) (entities.Job, error)
}

type JobUseCase struct {
	repo     interfaces.IJobRepository
	clock    clock.Clock
	observer interfaces.IWorkflowObserver
}

var _ IJobUseCase = (*JobUseCase)(nil)

func NewJobUseCase(repo interfaces.IJobRepository, clk clock.Clock, observer interfaces.IWorkflowObserver) *JobUseCase {
	if clk == nil {
		clk = clock.WallClock
	}
	return &JobUseCase{repo: repo, clock: clk, observer: observerOrNoop(observer)}
}

func (u *JobUseCase) Advance(ctx context.Context, jobID string) (entities.Job, error) {
	job, err := u.GetByID(ctx, jobID)
	if err != nil {
		return entities.Job{}, err
	}
	next, ok := job.Stage.Next()
	if !ok {
		return entities.Job{}, ErrJobCompleted
	}
	return u.moveTo(ctx, job, next)
}

// AdvanceTo jumps forward to stage, skipping any stages in between.
func (u *JobUseCase) AdvanceTo(ctx context.Context, jobID string, stage entities.JobStage) (entities.Job, error) {
	if stage.Index() < 0 {
		return entities.Job{}, ErrInvalidJobStage
	}
	job, err := u.GetByID(ctx, jobID)
	if err != nil {
		return entities.Job{}, err
	}
	if job.Stage.Terminal() {
		return entities.Job{}, ErrJobCompleted
	}
	if !job.Stage.Before(stage) {
		return entities.Job{}, stageError(job.Stage, stage)
	}
	return u.moveTo(ctx, job, stage)
}

func (u *JobUseCase) moveTo(ctx context.Context, job entities.Job, to entities.JobStage) (entities.Job, error) {
	updated, err := u.repo.UpdateStage(ctx, job.ID, job.Stage, to, u.clock.Now().UTC())
	if err != nil {
		if !errors.Is(err, interfaces.ErrStaleWrite) {
			return entities.Job{}, annotate(err, "advancing job %s", job.ID)
		}
		// Someone else advanced the job first; report against its current stage.
		cur, loadErr := u.GetByID(ctx, job.ID)
		if loadErr != nil {
			return entities.Job{}, loadErr
		}
		if !cur.Stage.Before(to) {
			return entities.Job{}, stageError(cur.Stage, to)
		}
		return entities.Job{}, ErrConcurrentUpdate
	}

	u.observer.ObserveTransition("job", strings.ToLower(string(to)))
	log.WithFields(log.Fields{"job_id": updated.ID, "from": job.Stage, "to": updated.Stage}).Info("[job][usecase] stage advanced")
	return updated, nil
}

// AddNote appends a note at any stage.
func (u *JobUseCase) AddNote(ctx context.Context, jobID, authorID, text string) (entities.Job, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return entities.Job{}, ErrInvalidID
	}
	note := entities.JobNote{
		AuthorID:  strings.TrimSpace(authorID),
		Text:      text,
		CreatedAt: u.clock.Now().UTC(),
	}

	job, err := u.repo.AppendNote(ctx, jobID, note)
	if err != nil {
		return entities.Job{}, annotate(err, "appending note to job %s", jobID)
	}
	if job.ID == "" {
		return entities.Job{}, ErrJobNotFound
	}
	log.WithFields(log.Fields{"job_id": jobID, "author_id": note.AuthorID}).Debug("[job][usecase] note added")
	return job, nil
}

func (u *JobUseCase) GetByID(ctx context.Context, id string) (entities.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Job{}, ErrInvalidID
	}
	job, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Job{}, annotate(err, "loading job %s", id)
	}
	if job.ID == "" {
		return entities.Job{}, ErrJobNotFound
	}
	return job, nil
}

func (u *JobUseCase) GetByBookingID(ctx context.Context, bookingID string) (entities.Job, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return entities.Job{}, ErrInvalidID
	}
	job, err := u.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return entities.Job{}, annotate(err, "loading job of booking %s", bookingID)
	}
	if job.ID == "" {
		return entities.Job{}, ErrJobNotFound
	}
	return job, nil
}

func stageError(from, to entities.JobStage) error {
	return fmt.Errorf("job cannot go from %s to %s: %w", from, to, ErrInvalidTransition)
}
