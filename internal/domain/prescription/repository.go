package prescription

import (
	"context"
)

type Repository interface {
	// Create persists a new prescription and assigns its id.
	Create(ctx context.Context, p *Prescription) error

	// GetByID retrieves a prescription by primary key. Returns
	// ErrPrescriptionNotFound if not found.
	GetByID(ctx context.Context, id uint) (*Prescription, error)

	// List returns prescriptions matching q, ordered by issue date
	// descending.
	List(ctx context.Context, q *ListQuery) ([]*Prescription, error)

	// Update overwrites the mutable fields of an existing prescription.
	// Returns ErrPrescriptionNotFound if the id does not exist.
	Update(ctx context.Context, p *Prescription) error

	// Delete removes a prescription. Returns ErrPrescriptionNotFound if the
	// id does not exist, so a second delete of the same id fails instead of
	// silently succeeding.
	Delete(ctx context.Context, id uint) error

	// WatchAll streams the full prescription list, newest first, re-emitting
	// on every committed mutation. The first emission is the current
	// snapshot. The channel closes when ctx is done.
	WatchAll(ctx context.Context) <-chan []*Prescription
}
