package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusConfirmed: true,
	StatusCompleted: true, StatusCancelled: true,
}

// allowed status transitions; a cancelled or completed appointment is
// final.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Query is the list query definition for appointments: search spans
// the id, patient, doctor, visit type, and visit notes; sorting covers
// both date directions and the patient name.
var Query = listquery.Definition[*Appointment]{
	SearchFields: []func(*Appointment) string{
		func(a *Appointment) string { return a.ID.String() },
		func(a *Appointment) string { return a.PatientName },
		func(a *Appointment) string { return a.DoctorName },
		func(a *Appointment) string {
			if a.Type == nil {
				return ""
			}
			return *a.Type
		},
		func(a *Appointment) string {
			if a.Notes == nil {
				return ""
			}
			return *a.Notes
		},
	},
	Status: func(a *Appointment) string { return a.Status },
	Sorts: map[string]listquery.Comparator[*Appointment]{
		"date-desc": listquery.TimeDesc(func(a *Appointment) time.Time { return a.Date }),
		"date-asc":  listquery.TimeAsc(func(a *Appointment) time.Time { return a.Date }),
		"patient":   listquery.StringAsc(func(a *Appointment) string { return a.PatientName }),
	},
	DefaultSort: "date-desc",
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if a.TimeSlot == "" {
		return fmt.Errorf("time_slot is required")
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	if a.Status != "" && !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return s.repo.Update(ctx, a)
}

// SetStatus moves an appointment along its lifecycle. Cancelled and
// completed appointments cannot change again.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(a.Status, status) {
		return nil, fmt.Errorf("cannot move appointment from %s to %s", a.Status, status)
	}
	a.Status = status
	if status == StatusCancelled {
		now := time.Now().UTC()
		a.CancelledAt = &now
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListResult is one filtered page plus its cursor and totals.
type ListResult struct {
	Items  []*Appointment
	Cursor pagination.Cursor
	Totals listquery.Totals
}

// List loads a page from storage, then applies the caller's query
// selections to the loaded page. Aggregates are computed over the
// loaded records before filtering, so the status counts describe the
// page regardless of the active filter.
func (s *Service) List(ctx context.Context, state listquery.State, pg pagination.Params) (*ListResult, error) {
	items, total, err := s.repo.List(ctx, pg.Limit, pg.Offset())
	if err != nil {
		return nil, err
	}
	return s.page(items, total, state, pg), nil
}

// ListForPatient scopes the list to one patient's appointments.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, state listquery.State, pg pagination.Params) (*ListResult, error) {
	items, total, err := s.repo.ListByPatient(ctx, patientID, pg.Limit, pg.Offset())
	if err != nil {
		return nil, err
	}
	return s.page(items, total, state, pg), nil
}

// ListForDoctor scopes the list to one doctor's appointments.
func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, state listquery.State, pg pagination.Params) (*ListResult, error) {
	items, total, err := s.repo.ListByDoctor(ctx, doctorID, pg.Limit, pg.Offset())
	if err != nil {
		return nil, err
	}
	return s.page(items, total, state, pg), nil
}

func (s *Service) page(items []*Appointment, total int, state listquery.State, pg pagination.Params) *ListResult {
	totals := listquery.Aggregate(items, Query.Status, nil)
	return &ListResult{
		Items:  Query.FilterAndSort(items, state),
		Cursor: pagination.NewCursor(pg.Page, pg.Limit, total),
		Totals: totals,
	}
}
