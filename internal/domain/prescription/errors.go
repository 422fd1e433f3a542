package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrPatientNameRequired  = errors.New("patient name is required")
	ErrMedicineRequired     = errors.New("a medicine must be selected")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
)
