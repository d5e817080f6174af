package appointments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

type mockRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.appointments, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		items = append(items, a)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

func newAppointment(patient, doctor string, status string, daysFromNow int) *Appointment {
	return &Appointment{
		PatientID:   uuid.New(),
		PatientName: patient,
		DoctorID:    uuid.New(),
		DoctorName:  doctor,
		Date:        time.Now().AddDate(0, 0, daysFromNow),
		TimeSlot:    "09:00",
		Status:      status,
	}
}

func TestService_CreateDefaultsToPending(t *testing.T) {
	svc := NewService(newMockRepo())

	a := newAppointment("John Doe", "Dr. Smith", "", 1)
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected pending default, got %s", a.Status)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		a    *Appointment
	}{
		{"missing patient", &Appointment{DoctorID: uuid.New(), Date: time.Now(), TimeSlot: "09:00"}},
		{"missing doctor", &Appointment{PatientID: uuid.New(), Date: time.Now(), TimeSlot: "09:00"}},
		{"missing date", &Appointment{PatientID: uuid.New(), DoctorID: uuid.New(), TimeSlot: "09:00"}},
		{"missing slot", &Appointment{PatientID: uuid.New(), DoctorID: uuid.New(), Date: time.Now()}},
	}
	for _, tc := range cases {
		if err := svc.Create(ctx, tc.a); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	bad := newAppointment("John", "Dr. Smith", "rescheduled", 1)
	if err := svc.Create(ctx, bad); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestService_SetStatusTransitions(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	a := newAppointment("John", "Dr. Smith", StatusPending, 1)
	if err := svc.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.SetStatus(ctx, a.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", got.Status)
	}

	got, err = svc.SetStatus(ctx, a.ID, StatusCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.CancelledAt == nil {
		t.Error("expected cancelled_at to be stamped")
	}

	// Cancelled is final.
	if _, err := svc.SetStatus(ctx, a.ID, StatusConfirmed); err == nil {
		t.Error("expected error reviving a cancelled appointment")
	}
}

func TestService_SetStatusRejectsSkippingConfirmation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	a := newAppointment("John", "Dr. Smith", StatusPending, 1)
	if err := svc.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetStatus(ctx, a.ID, StatusCompleted); err == nil {
		t.Error("expected error completing a pending appointment")
	}
}

func TestService_ListAppliesQueryState(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, a := range []*Appointment{
		newAppointment("John Doe", "Dr. Smith", StatusConfirmed, 1),
		newAppointment("Jane Roe", "Dr. Smith", StatusPending, 2),
		newAppointment("John Doe", "Dr. Adams", StatusCancelled, 3),
	} {
		if err := svc.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err := svc.List(ctx, listquery.State{
		SearchText:   "john",
		StatusFilter: StatusConfirmed,
		SortKey:      "date-asc",
	}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
	if res.Items[0].DoctorName != "Dr. Smith" {
		t.Errorf("unexpected match: %+v", res.Items[0])
	}

	// Aggregates describe the loaded page, not the filtered view.
	if res.Totals.Total != 3 {
		t.Errorf("expected aggregate total 3, got %d", res.Totals.Total)
	}
	if res.Totals.CountsByStatus[StatusCancelled] != 1 {
		t.Errorf("expected 1 cancelled in aggregates, got %+v", res.Totals.CountsByStatus)
	}
	if res.Cursor.Total != 3 {
		t.Errorf("expected cursor total 3, got %d", res.Cursor.Total)
	}
}

func TestService_SearchSpansIDAndNotes(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	notes := "persistent migraine follow-up"
	withNotes := newAppointment("John Doe", "Dr. Smith", StatusPending, 1)
	withNotes.Notes = &notes
	plain := newAppointment("Jane Roe", "Dr. Adams", StatusPending, 2)
	for _, a := range []*Appointment{withNotes, plain} {
		if err := svc.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err := svc.List(ctx, listquery.State{
		SearchText: "migraine", StatusFilter: listquery.StatusAll, SortKey: "date-asc",
	}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != withNotes.ID {
		t.Errorf("expected the notes match, got %d items", len(res.Items))
	}

	res, err = svc.List(ctx, listquery.State{
		SearchText: plain.ID.String(), StatusFilter: listquery.StatusAll, SortKey: "date-asc",
	}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != plain.ID {
		t.Errorf("expected the id match, got %d items", len(res.Items))
	}
}

func TestService_ListForPatientScopes(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	mine := newAppointment("John Doe", "Dr. Smith", StatusPending, 1)
	other := newAppointment("Jane Roe", "Dr. Smith", StatusPending, 2)
	for _, a := range []*Appointment{mine, other} {
		if err := svc.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err := svc.ListForPatient(ctx, mine.PatientID,
		Query.DefaultState(), pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].PatientID != mine.PatientID {
		t.Errorf("expected only the patient's appointments, got %d items", len(res.Items))
	}
}
