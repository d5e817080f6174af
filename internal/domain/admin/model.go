package admin

import (
	"time"

	"github.com/google/uuid"
)

// System user account statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// SystemUser maps to the system_user table. Every portal sign-in is
// backed by one of these rows.
type SystemUser struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Status       string     `db:"status" json:"status"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// AuditRecord maps to the audit_log table. Rows are written by the
// audit middleware for every mutating API request.
type AuditRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	UserRole   *string   `db:"user_role" json:"user_role,omitempty"`
	Resource   string    `db:"resource" json:"resource"`
	Action     string    `db:"action" json:"action"`
	Method     string    `db:"method" json:"method"`
	Path       string    `db:"path" json:"path"`
	IPAddress  *string   `db:"ip_address" json:"ip_address,omitempty"`
	RequestID  *string   `db:"request_id" json:"request_id,omitempty"`
	StatusCode int       `db:"status_code" json:"status_code"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}
