package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/middleware"
	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

var validStatuses = map[string]bool{
	StatusActive: true, StatusSuspended: true,
}

// Query defines the user management list: search spans name and email,
// the role is the filter dimension, and sorting covers name and role.
var Query = listquery.Definition[*SystemUser]{
	SearchFields: []func(*SystemUser) string{
		func(u *SystemUser) string { return u.Name },
		func(u *SystemUser) string { return u.Email },
	},
	Status: func(u *SystemUser) string { return u.Role },
	Sorts: map[string]listquery.Comparator[*SystemUser]{
		"name": listquery.StringAsc(func(u *SystemUser) string { return u.Name }),
		"role": listquery.StringAsc(func(u *SystemUser) string { return u.Role }),
	},
	DefaultSort: "name",
}

type Service struct {
	users UserRepository
	audit AuditRepository
}

func NewService(users UserRepository, audit AuditRepository) *Service {
	return &Service{users: users, audit: audit}
}

// Register creates a portal account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (*SystemUser, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if role == "" {
		role = auth.RolePatient
	}
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u := &SystemUser{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       StatusActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials and returns the account. Suspended
// accounts cannot sign in. The same error is returned for an unknown
// email and a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*SystemUser, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if u.Status != StatusActive {
		return nil, fmt.Errorf("account is suspended")
	}
	return u, nil
}

// TouchLogin stamps the account's last sign-in time.
func (s *Service) TouchLogin(ctx context.Context, u *SystemUser) error {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return s.users.Update(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*SystemUser, error) {
	return s.users.GetByID(ctx, id)
}

// SetUserStatus activates or suspends an account.
func (s *Service) SetUserStatus(ctx context.Context, id uuid.UUID, status string) (*SystemUser, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Status = status
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// UserListResult is one filtered user page plus its cursor and totals.
type UserListResult struct {
	Items  []*SystemUser
	Cursor pagination.Cursor
	Totals listquery.Totals
}

// ListUsers loads a user page and applies the caller's query
// selections to it.
func (s *Service) ListUsers(ctx context.Context, state listquery.State, pg pagination.Params) (*UserListResult, error) {
	items, total, err := s.users.List(ctx, pg.Limit, pg.Offset())
	if err != nil {
		return nil, err
	}
	return &UserListResult{
		Items:  Query.FilterAndSort(items, state),
		Cursor: pagination.NewCursor(pg.Page, pg.Limit, total),
		Totals: listquery.Aggregate(items, Query.Status, nil),
	}, nil
}

// AuditQuery drives the audit trail page: search spans the resource,
// path, and acting user; the recorded action doubles as the status
// filter. Newest entries first by default.
var AuditQuery = listquery.Definition[*AuditRecord]{
	SearchFields: []func(*AuditRecord) string{
		func(r *AuditRecord) string { return r.Resource },
		func(r *AuditRecord) string { return r.Path },
		func(r *AuditRecord) string {
			if r.UserID == nil {
				return ""
			}
			return *r.UserID
		},
	},
	Status: func(r *AuditRecord) string { return r.Action },
	Sorts: map[string]listquery.Comparator[*AuditRecord]{
		"date-desc": listquery.TimeDesc(func(r *AuditRecord) time.Time { return r.OccurredAt }),
		"date-asc":  listquery.TimeAsc(func(r *AuditRecord) time.Time { return r.OccurredAt }),
	},
	DefaultSort: "date-desc",
}

// AuditListResult is one filtered audit page plus its cursor and
// totals.
type AuditListResult struct {
	Items  []*AuditRecord
	Cursor pagination.Cursor
	Totals listquery.Totals
}

// ListAudit loads an audit page and applies the caller's query
// selections to it.
func (s *Service) ListAudit(ctx context.Context, state listquery.State, pg pagination.Params) (*AuditListResult, error) {
	items, total, err := s.audit.List(ctx, pg.Limit, pg.Offset())
	if err != nil {
		return nil, err
	}
	return &AuditListResult{
		Items:  AuditQuery.FilterAndSort(items, state),
		Cursor: pagination.NewCursor(pg.Page, pg.Limit, total),
		Totals: listquery.Aggregate(items, AuditQuery.Status, nil),
	}, nil
}

// Recorder adapts the audit repository to the audit middleware.
func (s *Service) Recorder() middleware.AuditRecorder {
	return middleware.AuditRecorderFunc(func(entry middleware.AuditEntry) error {
		rec := &AuditRecord{
			Resource:   entry.Resource,
			Action:     entry.Action,
			Method:     entry.Method,
			Path:       entry.Path,
			StatusCode: entry.StatusCode,
			OccurredAt: entry.Timestamp,
		}
		if entry.UserID != "" {
			rec.UserID = &entry.UserID
		}
		if entry.UserRole != "" {
			rec.UserRole = &entry.UserRole
		}
		if entry.IPAddress != "" {
			rec.IPAddress = &entry.IPAddress
		}
		if entry.RequestID != "" {
			rec.RequestID = &entry.RequestID
		}
		return s.audit.Insert(context.Background(), rec)
	})
}
