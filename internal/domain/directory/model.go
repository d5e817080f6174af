package directory

import (
	"time"

	"github.com/google/uuid"
)

// Doctor availability statuses.
const (
	StatusActive   = "active"
	StatusOnLeave  = "on-leave"
	StatusInactive = "inactive"
)

// Doctor maps to the doctor table.
type Doctor struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Specialty       string    `db:"specialty" json:"specialty"`
	Email           string    `db:"email" json:"email"`
	Phone           *string   `db:"phone" json:"phone,omitempty"`
	Location        *string   `db:"location" json:"location,omitempty"`
	Status          string    `db:"status" json:"status"`
	Rating          float64   `db:"rating" json:"rating"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	Bio             *string   `db:"bio" json:"bio,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
