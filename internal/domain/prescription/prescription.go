package prescription

import (
	"time"
)

// Prescription records a dispensation of a medicine to a patient. The
// medicine name is denormalized at creation time so the record stays
// displayable after the referenced medicine is edited or deleted; MedicineID
// is a weak reference and may dangle.
type Prescription struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	PatientName  string    `gorm:"column:patient_name;type:varchar(255);not null;index" json:"patient_name"`
	IssuedAt     time.Time `gorm:"column:issued_at;not null;index" json:"issued_at"`
	MedicineID   uint      `gorm:"column:medicine_id;not null;index" json:"medicine_id"`
	MedicineName string    `gorm:"column:medicine_name;type:varchar(255);not null" json:"medicine_name"`
	Quantity     int       `gorm:"column:quantity;not null" json:"quantity"`
	DoctorNote   string    `gorm:"column:doctor_note;type:text" json:"doctor_note,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// Draft carries caller-supplied fields for creating a prescription. The
// medicine name is resolved by the workflow, never taken from the caller.
type Draft struct {
	PatientName string
	IssuedAt    time.Time
	MedicineID  uint
	Quantity    int
	DoctorNote  string
}

// UpdateCommand carries field edits for an existing prescription. Edits do
// not re-run the stock delta between the old and new quantity; quantity on
// hand only moves on create and delete.
type UpdateCommand struct {
	ID          uint
	PatientName string
	IssuedAt    time.Time
	Quantity    int
	DoctorNote  string
}

// ListQuery filters the prescription list. Search matches patient or
// medicine name, case-insensitively. Zero time bounds mean unbounded.
type ListQuery struct {
	Search string
	From   time.Time
	To     time.Time
}
