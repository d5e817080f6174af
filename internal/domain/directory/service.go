package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

var validStatuses = map[string]bool{
	StatusActive: true, StatusOnLeave: true, StatusInactive: true,
}

// Query defines the doctor directory list: search spans name,
// specialty, and location; sorting covers name, rating, and
// experience.
var Query = listquery.Definition[*Doctor]{
	SearchFields: []func(*Doctor) string{
		func(d *Doctor) string { return d.Name },
		func(d *Doctor) string { return d.Specialty },
		func(d *Doctor) string {
			if d.Location == nil {
				return ""
			}
			return *d.Location
		},
	},
	Status: func(d *Doctor) string { return d.Status },
	Sorts: map[string]listquery.Comparator[*Doctor]{
		"name":            listquery.StringAsc(func(d *Doctor) string { return d.Name }),
		"rating-desc":     listquery.NumberDesc(func(d *Doctor) float64 { return d.Rating }),
		"experience-desc": listquery.NumberDesc(func(d *Doctor) float64 { return float64(d.ExperienceYears) }),
	},
	DefaultSort: "name",
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Specialty == "" {
		return fmt.Errorf("specialty is required")
	}
	if d.Email == "" {
		return fmt.Errorf("email is required")
	}
	if d.Status == "" {
		d.Status = StatusActive
	}
	if !validStatuses[d.Status] {
		return fmt.Errorf("invalid status: %s", d.Status)
	}
	if d.Rating < 0 || d.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if d.Status != "" && !validStatuses[d.Status] {
		return fmt.Errorf("invalid status: %s", d.Status)
	}
	if d.Rating < 0 || d.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	return s.repo.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListResult is one filtered directory page plus its cursor and totals.
type ListResult struct {
	Items  []*Doctor
	Cursor pagination.Cursor
	Totals listquery.Totals
}

// List loads a directory page and applies the caller's query
// selections to it.
func (s *Service) List(ctx context.Context, state listquery.State, pg pagination.Params) (*ListResult, error) {
	items, total, err := s.repo.List(ctx, pg.Limit, pg.Offset())
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Items:  Query.FilterAndSort(items, state),
		Cursor: pagination.NewCursor(pg.Page, pg.Limit, total),
		Totals: listquery.Aggregate(items, Query.Status, nil),
	}, nil
}
