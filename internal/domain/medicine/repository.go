package medicine

import (
	"context"
)

type Repository interface {
	// Create persists a new medicine and assigns its id.
	Create(ctx context.Context, m *Medicine) error

	// GetByID retrieves a medicine by primary key. Returns ErrMedicineNotFound
	// if not found.
	GetByID(ctx context.Context, id uint) (*Medicine, error)

	// List returns all medicines ordered by name ascending.
	List(ctx context.Context) ([]*Medicine, error)

	// Update overwrites the mutable fields of an existing medicine.
	Update(ctx context.Context, m *Medicine) error

	// Delete removes a medicine. Prescriptions referencing it are left in
	// place; they carry their own copy of the medicine name.
	Delete(ctx context.Context, id uint) error

	// AdjustQuantity applies quantity = quantity + delta as a single UPDATE
	// statement, never as a read-modify-write from the caller. Delta may be
	// negative (consumption) or positive (rollback). It does not enforce a
	// floor; callers needing one must use Consume.
	AdjustQuantity(ctx context.Context, id uint, delta int) error

	// Consume decrements quantity by qty only if at least qty is on hand,
	// as one conditional UPDATE. Returns ErrInsufficientStock when the
	// guard fails and ErrMedicineNotFound when the id does not exist.
	Consume(ctx context.Context, id uint, qty int) error

	// WatchAll streams the full collection, ordered by name, re-emitting on
	// every committed mutation. The first emission is the current snapshot.
	// The channel closes when ctx is done.
	WatchAll(ctx context.Context) <-chan []*Medicine

	// WatchByID streams one medicine. Deleting the watched id mid-stream
	// produces an Update with Absent set rather than an error or a closed
	// channel. The channel closes when ctx is done.
	WatchByID(ctx context.Context, id uint) <-chan Update
}
