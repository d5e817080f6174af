package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusPaid: true,
	StatusOverdue: true, StatusCancelled: true,
}

// Query defines the invoice list: search spans the invoice number,
// patient name, and description; sorting covers issue date and amount.
var Query = listquery.Definition[*Invoice]{
	SearchFields: []func(*Invoice) string{
		func(inv *Invoice) string { return inv.Number },
		func(inv *Invoice) string { return inv.PatientName },
		func(inv *Invoice) string {
			if inv.Description == nil {
				return ""
			}
			return *inv.Description
		},
	},
	Status: func(inv *Invoice) string { return inv.Status },
	Sorts: map[string]listquery.Comparator[*Invoice]{
		"date-desc":   listquery.TimeDesc(func(inv *Invoice) time.Time { return inv.IssuedDate }),
		"date-asc":    listquery.TimeAsc(func(inv *Invoice) time.Time { return inv.IssuedDate }),
		"amount-desc": listquery.NumberDesc(func(inv *Invoice) float64 { return inv.Amount }),
		"amount-asc":  listquery.NumberAsc(func(inv *Invoice) float64 { return inv.Amount }),
	},
	DefaultSort: "date-desc",
}

// sums computed for every invoice page: the page's billed total and the
// portion still owed.
var querySums = map[string]func(*Invoice) float64{
	"amount": func(inv *Invoice) float64 { return inv.Amount },
	"outstanding": func(inv *Invoice) float64 {
		if inv.Status == StatusPending || inv.Status == StatusOverdue {
			return inv.Amount
		}
		return 0
	},
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if inv.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if inv.Number == "" {
		return fmt.Errorf("number is required")
	}
	if inv.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	if inv.Status == "" {
		inv.Status = StatusPending
	}
	if !validStatuses[inv.Status] {
		return fmt.Errorf("invalid status: %s", inv.Status)
	}
	if inv.IssuedDate.IsZero() {
		inv.IssuedDate = time.Now().UTC()
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.IssuedDate.AddDate(0, 1, 0)
	}
	return s.repo.Create(ctx, inv)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	if inv.Status != "" && !validStatuses[inv.Status] {
		return fmt.Errorf("invalid status: %s", inv.Status)
	}
	return s.repo.Update(ctx, inv)
}

// MarkPaid settles an invoice. Cancelled invoices cannot be paid.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusCancelled {
		return nil, fmt.Errorf("cannot pay a cancelled invoice")
	}
	if inv.Status == StatusPaid {
		return inv, nil
	}
	now := time.Now().UTC()
	inv.Status = StatusPaid
	inv.PaidAt = &now
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// SweepOverdue flags pending invoices whose due date has passed. It
// walks the full invoice set in pages and returns how many were
// flagged.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	const pageSize = 100
	now := time.Now().UTC()
	flagged := 0
	for offset := 0; ; offset += pageSize {
		items, total, err := s.repo.List(ctx, pageSize, offset)
		if err != nil {
			return flagged, err
		}
		for _, inv := range items {
			if inv.Status == StatusPending && inv.DueDate.Before(now) {
				inv.Status = StatusOverdue
				if err := s.repo.Update(ctx, inv); err != nil {
					return flagged, err
				}
				flagged++
			}
		}
		if offset+pageSize >= total || len(items) == 0 {
			break
		}
	}
	return flagged, nil
}

// ListResult is one filtered invoice page plus its cursor and totals.
type ListResult struct {
	Items  []*Invoice
	Cursor pagination.Cursor
	Totals listquery.Totals
}

// List loads an invoice page and applies the caller's query selections
// to it. Totals include the billed and outstanding sums for the loaded
// page.
func (s *Service) List(ctx context.Context, state listquery.State, pg pagination.Params) (*ListResult, error) {
	items, total, err := s.repo.List(ctx, pg.Limit, pg.Offset())
	if err != nil {
		return nil, err
	}
	return s.page(items, total, state, pg), nil
}

// ListForPatient scopes the invoice list to one patient.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, state listquery.State, pg pagination.Params) (*ListResult, error) {
	items, total, err := s.repo.ListByPatient(ctx, patientID, pg.Limit, pg.Offset())
	if err != nil {
		return nil, err
	}
	return s.page(items, total, state, pg), nil
}

func (s *Service) page(items []*Invoice, total int, state listquery.State, pg pagination.Params) *ListResult {
	return &ListResult{
		Items:  Query.FilterAndSort(items, state),
		Cursor: pagination.NewCursor(pg.Page, pg.Limit, total),
		Totals: listquery.Aggregate(items, Query.Status, querySums),
	}
}
