package medicine

import "errors"

var (
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")
	ErrNameRequired      = errors.New("medicine name is required")
	ErrNegativeQuantity  = errors.New("quantity cannot be negative")
	ErrNegativePrice     = errors.New("unit price cannot be negative")
)
