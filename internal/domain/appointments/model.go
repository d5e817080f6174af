package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointment table.
type Appointment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientName string     `db:"patient_name" json:"patient_name"`
	DoctorID    uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	DoctorName  string     `db:"doctor_name" json:"doctor_name"`
	Specialty   *string    `db:"specialty" json:"specialty,omitempty"`
	Date        time.Time  `db:"date" json:"date"`
	TimeSlot    string     `db:"time_slot" json:"time_slot"`
	Type        *string    `db:"type" json:"type,omitempty"`
	Status      string     `db:"status" json:"status"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
