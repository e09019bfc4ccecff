package interfaces

import "context"

// ISlotLocker serializes work on a technician's calendar day. Acquire blocks
// until the slot is free or its bounded wait expires; release is idempotent.
type ISlotLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// IWorkflowObserver receives workflow signals for metrics.
type IWorkflowObserver interface {
	ObserveTransition(entity, transition string)
	ObserveSchedulingConflict()
	ObserveLockTimeout()
}
