package admin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/middleware"
	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

type mockUserRepo struct {
	users map[uuid.UUID]*SystemUser
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*SystemUser)}
}

func (m *mockUserRepo) Create(_ context.Context, u *SystemUser) error {
	u.ID = uuid.New()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*SystemUser, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*SystemUser, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockUserRepo) Update(_ context.Context, u *SystemUser) error {
	if _, ok := m.users[u.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*SystemUser, int, error) {
	var items []*SystemUser
	for _, u := range m.users {
		items = append(items, u)
	}
	return items, len(items), nil
}

type mockAuditRepo struct {
	records []*AuditRecord
}

func (m *mockAuditRepo) Insert(_ context.Context, rec *AuditRecord) error {
	rec.ID = uuid.New()
	m.records = append(m.records, rec)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, limit, offset int) ([]*AuditRecord, int, error) {
	return m.records, len(m.records), nil
}

func newTestService() (*Service, *mockUserRepo, *mockAuditRepo) {
	users := newMockUserRepo()
	audit := &mockAuditRepo{}
	return NewService(users, audit), users, audit
}

func TestService_RegisterAndAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "John Doe", "John@Example.com", "secret-password", auth.RolePatient)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "john@example.com" {
		t.Errorf("expected lower-cased email, got %s", u.Email)
	}
	if u.PasswordHash == "secret-password" || u.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}
	if u.Status != StatusActive {
		t.Errorf("expected active default, got %s", u.Status)
	}

	got, err := svc.Authenticate(ctx, "john@example.com", "secret-password")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Error("expected the registered account back")
	}

	if _, err := svc.Authenticate(ctx, "john@example.com", "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret-password"); err == nil {
		t.Error("expected error for unknown email")
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "a@b.c", "secret-password", auth.RolePatient); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := svc.Register(ctx, "John", "not-an-email", "secret-password", auth.RolePatient); err == nil {
		t.Error("expected error for invalid email")
	}
	if _, err := svc.Register(ctx, "John", "a@b.c", "short", auth.RolePatient); err == nil {
		t.Error("expected error for short password")
	}
	if _, err := svc.Register(ctx, "John", "a@b.c", "secret-password", "root"); err == nil {
		t.Error("expected error for invalid role")
	}

	if _, err := svc.Register(ctx, "John", "dup@example.com", "secret-password", auth.RolePatient); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "Jane", "dup@example.com", "secret-password", auth.RolePatient); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestService_SuspendedAccountCannotSignIn(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "John", "john@example.com", "secret-password", auth.RolePatient)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.SetUserStatus(ctx, u.ID, StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "john@example.com", "secret-password"); err == nil {
		t.Error("expected error for suspended account")
	}
}

func TestService_ListUsersFiltersAndAggregates(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _ = svc.Register(ctx, "John Doe", "john@example.com", "secret-password", auth.RolePatient)
	_, _ = svc.Register(ctx, "Jane Roe", "jane@example.com", "secret-password", auth.RoleDoctor)
	_, _ = svc.Register(ctx, "Jack Poe", "jack@example.com", "secret-password", auth.RolePatient)

	res, err := svc.ListUsers(ctx, listquery.State{
		SearchText: "john", StatusFilter: listquery.StatusAll, SortKey: "name",
	}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Name != "John Doe" {
		t.Errorf("expected name match, got %d items", len(res.Items))
	}
	// The role is the filter dimension, so aggregates count roles.
	if res.Totals.CountsByStatus[auth.RolePatient] != 2 {
		t.Errorf("unexpected aggregates: %+v", res.Totals.CountsByStatus)
	}

	res, err = svc.ListUsers(ctx, listquery.State{
		StatusFilter: auth.RoleDoctor, SortKey: "name",
	}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Role != auth.RoleDoctor {
		t.Errorf("expected only doctor accounts, got %d items", len(res.Items))
	}
}

func TestService_ListAuditAppliesQueryState(t *testing.T) {
	svc, _, audit := newTestService()
	ctx := context.Background()

	now := time.Now().UTC()
	uid := "u-1"
	for i, rec := range []*AuditRecord{
		{Resource: "doctors", Action: "create", Method: "POST", Path: "/api/doctors"},
		{Resource: "doctors", Action: "delete", Method: "DELETE", Path: "/api/doctors/1"},
		{Resource: "invoices", Action: "update", Method: "PUT", Path: "/api/invoices/2", UserID: &uid},
	} {
		rec.OccurredAt = now.Add(time.Duration(i) * time.Minute)
		if err := audit.Insert(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	// Default sort is newest first.
	res, err := svc.ListAudit(ctx, listquery.State{
		StatusFilter: listquery.StatusAll, SortKey: AuditQuery.DefaultSort,
	}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(res.Items))
	}
	if res.Items[0].Resource != "invoices" {
		t.Errorf("expected the newest entry first, got %+v", res.Items[0])
	}

	// The action is the filter dimension.
	res, err = svc.ListAudit(ctx, listquery.State{
		StatusFilter: "delete", SortKey: AuditQuery.DefaultSort,
	}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Action != "delete" {
		t.Errorf("expected only the delete entry, got %d items", len(res.Items))
	}
	if res.Totals.CountsByStatus["create"] != 1 || res.Totals.Total != 3 {
		t.Errorf("expected totals over the loaded page, got %+v", res.Totals)
	}

	// Search spans resource, path, and acting user.
	res, err = svc.ListAudit(ctx, listquery.State{
		SearchText: "u-1", StatusFilter: listquery.StatusAll, SortKey: AuditQuery.DefaultSort,
	}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].UserID == nil {
		t.Errorf("expected the entry with the matching user, got %d items", len(res.Items))
	}
}

func TestService_RecorderPersistsAuditEntries(t *testing.T) {
	svc, _, audit := newTestService()

	rec := svc.Recorder()
	err := rec.RecordChange(middleware.AuditEntry{
		UserID:     "u-1",
		UserRole:   auth.RoleAdmin,
		Resource:   "doctors",
		Action:     "create",
		Method:     "POST",
		Path:       "/api/doctors",
		Timestamp:  time.Now().UTC(),
		StatusCode: 201,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(audit.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(audit.records))
	}
	got := audit.records[0]
	if got.Resource != "doctors" || got.Action != "create" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.UserID == nil || *got.UserID != "u-1" {
		t.Errorf("expected user id on record, got %+v", got.UserID)
	}
}
