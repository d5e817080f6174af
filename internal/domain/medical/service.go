package medical

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/portal/internal/platform/kvstore"
	"github.com/carebridge/portal/internal/platform/upstream"
	"github.com/carebridge/portal/pkg/listquery"
)

var validHistoryStatuses = map[string]bool{
	HistoryActive: true, HistoryChronic: true, HistoryResolved: true,
}

var validMedicationStatuses = map[string]bool{
	MedicationActive: true, MedicationCompleted: true, MedicationStopped: true,
}

var validSeverities = map[string]bool{
	SeverityMild: true, SeverityModerate: true, SeveritySevere: true,
}

// HistoryQuery drives the medical history page: search spans condition
// and doctor, newest diagnosis first by default.
var HistoryQuery = listquery.Definition[*HistoryItem]{
	SearchFields: []func(*HistoryItem) string{
		func(h *HistoryItem) string { return h.Condition },
		func(h *HistoryItem) string { return h.Doctor },
	},
	Status: func(h *HistoryItem) string { return h.Status },
	Sorts: map[string]listquery.Comparator[*HistoryItem]{
		"date-desc": listquery.DateStringDesc(func(h *HistoryItem) string { return h.DiagnosedDate }),
		"date-asc":  listquery.DateStringAsc(func(h *HistoryItem) string { return h.DiagnosedDate }),
		"condition": listquery.StringAsc(func(h *HistoryItem) string { return h.Condition }),
	},
	DefaultSort: "date-desc",
}

// MedicationQuery drives the medications page.
var MedicationQuery = listquery.Definition[*Medication]{
	SearchFields: []func(*Medication) string{
		func(m *Medication) string { return m.Name },
		func(m *Medication) string { return m.PrescribedBy },
	},
	Status: func(m *Medication) string { return m.Status },
	Sorts: map[string]listquery.Comparator[*Medication]{
		"name":      listquery.StringAsc(func(m *Medication) string { return m.Name }),
		"date-desc": listquery.DateStringDesc(func(m *Medication) string { return m.StartDate }),
	},
	DefaultSort: "name",
}

// AllergyQuery drives the allergies page. Severity doubles as the
// status filter.
var AllergyQuery = listquery.Definition[*Allergy]{
	SearchFields: []func(*Allergy) string{
		func(a *Allergy) string { return a.Allergen },
		func(a *Allergy) string { return a.Reaction },
	},
	Status: func(a *Allergy) string { return a.Severity },
	Sorts: map[string]listquery.Comparator[*Allergy]{
		"allergen":  listquery.StringAsc(func(a *Allergy) string { return a.Allergen }),
		"date-desc": listquery.DateStringDesc(func(a *Allergy) string { return a.DiagnosedDate }),
	},
	DefaultSort: "allergen",
}

// Service serves the patient chart pages. History comes from the
// upstream clinical API with a last-good snapshot fallback; medications
// and allergies live in the key-value store as demo-quality data.
type Service struct {
	api    *upstream.Client
	store  kvstore.Store
	logger zerolog.Logger

	mu     sync.Mutex
	latest map[string]*upstream.Latest
}

// NewService builds the chart service. api may be nil when no upstream
// base URL is configured; history then serves demo data.
func NewService(api *upstream.Client, store kvstore.Store, logger zerolog.Logger) *Service {
	return &Service{
		api:    api,
		store:  store,
		logger: logger,
		latest: make(map[string]*upstream.Latest),
	}
}

// latestFor returns the fetch guard for one patient's history. Each
// patient gets their own token sequence, so a fetch for one patient
// never marks another patient's in-flight fetch stale.
func (s *Service) latestFor(patientID string) *upstream.Latest {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.latest[patientID]
	if !ok {
		l = &upstream.Latest{}
		s.latest[patientID] = l
	}
	return l
}

func historyKey(patientID string) string {
	return "medical:history:" + patientID
}

func medicationsKey(patientID string) string {
	return "medical:medications:" + patientID
}

func allergiesKey(patientID string) string {
	return "medical:allergies:" + patientID
}

// HistoryResult is one filtered history view plus its aggregates.
// Notice carries the fallback explanation when the upstream could not
// be reached and a snapshot or sample data is served instead.
type HistoryResult struct {
	Items  []*HistoryItem
	Totals listquery.Totals
	Notice string
}

// History fetches the patient's medical history from the upstream
// clinical API and applies the caller's query selections. A failed
// fetch falls back to the last good snapshot, then to sample data;
// there are no retries. Out-of-order completions never overwrite a
// newer snapshot.
func (s *Service) History(ctx context.Context, patientID string, state listquery.State) (*HistoryResult, error) {
	items, notice := s.loadHistory(ctx, patientID)
	return &HistoryResult{
		Items:  HistoryQuery.FilterAndSort(items, state),
		Totals: listquery.Aggregate(items, HistoryQuery.Status, nil),
		Notice: notice,
	}, nil
}

func (s *Service) loadHistory(ctx context.Context, patientID string) ([]*HistoryItem, string) {
	if s.api == nil {
		return demoHistory(patientID), "showing sample records, no clinical service is configured"
	}

	guard := s.latestFor(patientID)
	token := guard.Begin()
	var items []*HistoryItem
	_, err := s.api.Get(ctx, "/patient/medical-history?patient_id="+patientID, &items)
	if err == nil {
		if guard.IsCurrent(token) {
			if serr := s.store.Set(ctx, historyKey(patientID), items); serr != nil {
				s.logger.Warn().Err(serr).Str("patient_id", patientID).Msg("could not snapshot medical history")
			}
		}
		return items, ""
	}
	s.logger.Warn().Err(err).Str("patient_id", patientID).Msg("medical history fetch failed")

	var cached []*HistoryItem
	ok, cerr := s.store.Get(ctx, historyKey(patientID), &cached)
	if cerr != nil {
		s.logger.Warn().Err(cerr).Str("patient_id", patientID).Msg("could not read history snapshot")
	}
	if ok && cerr == nil {
		return cached, "showing previously loaded records, the clinical service is unavailable"
	}
	return demoHistory(patientID), "showing sample records, the clinical service is unavailable"
}

// ChartResult is one filtered medication or allergy view plus its
// aggregates.
type ChartResult[T any] struct {
	Items  []T
	Totals listquery.Totals
}

// Medications returns the patient's medication list with the caller's
// query selections applied, seeding sample data on first access.
func (s *Service) Medications(ctx context.Context, patientID string, state listquery.State) (*ChartResult[*Medication], error) {
	items, err := s.loadMedications(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &ChartResult[*Medication]{
		Items:  MedicationQuery.FilterAndSort(items, state),
		Totals: listquery.Aggregate(items, MedicationQuery.Status, nil),
	}, nil
}

// AddMedication appends a prescription line and persists the list.
func (s *Service) AddMedication(ctx context.Context, patientID string, m *Medication) (*Medication, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("medication name is required")
	}
	if m.Dosage == "" {
		return nil, fmt.Errorf("dosage is required")
	}
	if m.Status == "" {
		m.Status = MedicationActive
	}
	if !validMedicationStatuses[m.Status] {
		return nil, fmt.Errorf("invalid status: %s", m.Status)
	}
	if m.StartDate == "" {
		m.StartDate = time.Now().UTC().Format("2006-01-02")
	}
	m.ID = uuid.NewString()
	m.PatientID = patientID

	items, err := s.loadMedications(ctx, patientID)
	if err != nil {
		return nil, err
	}
	items = append(items, m)
	if err := s.store.Set(ctx, medicationsKey(patientID), items); err != nil {
		return nil, fmt.Errorf("save medications: %w", err)
	}
	return m, nil
}

// RemoveMedication deletes a prescription line by id. Removing an
// unknown id is not an error.
func (s *Service) RemoveMedication(ctx context.Context, patientID, id string) error {
	items, err := s.loadMedications(ctx, patientID)
	if err != nil {
		return err
	}
	kept := make([]*Medication, 0, len(items))
	for _, m := range items {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return s.store.Set(ctx, medicationsKey(patientID), kept)
}

func (s *Service) loadMedications(ctx context.Context, patientID string) ([]*Medication, error) {
	var items []*Medication
	ok, err := s.store.Get(ctx, medicationsKey(patientID), &items)
	if err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}
	if !ok {
		items = demoMedications(patientID)
		if err := s.store.Set(ctx, medicationsKey(patientID), items); err != nil {
			return nil, fmt.Errorf("seed medications: %w", err)
		}
	}
	return items, nil
}

// Allergies returns the patient's allergy list with the caller's query
// selections applied, seeding sample data on first access.
func (s *Service) Allergies(ctx context.Context, patientID string, state listquery.State) (*ChartResult[*Allergy], error) {
	items, err := s.loadAllergies(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &ChartResult[*Allergy]{
		Items:  AllergyQuery.FilterAndSort(items, state),
		Totals: listquery.Aggregate(items, AllergyQuery.Status, nil),
	}, nil
}

// AddAllergy appends an allergy record and persists the list.
func (s *Service) AddAllergy(ctx context.Context, patientID string, a *Allergy) (*Allergy, error) {
	if a.Allergen == "" {
		return nil, fmt.Errorf("allergen is required")
	}
	if a.Severity == "" {
		a.Severity = SeverityMild
	}
	if !validSeverities[a.Severity] {
		return nil, fmt.Errorf("invalid severity: %s", a.Severity)
	}
	if a.DiagnosedDate == "" {
		a.DiagnosedDate = time.Now().UTC().Format("2006-01-02")
	}
	a.ID = uuid.NewString()
	a.PatientID = patientID

	items, err := s.loadAllergies(ctx, patientID)
	if err != nil {
		return nil, err
	}
	items = append(items, a)
	if err := s.store.Set(ctx, allergiesKey(patientID), items); err != nil {
		return nil, fmt.Errorf("save allergies: %w", err)
	}
	return a, nil
}

// RemoveAllergy deletes an allergy record by id. Removing an unknown id
// is not an error.
func (s *Service) RemoveAllergy(ctx context.Context, patientID, id string) error {
	items, err := s.loadAllergies(ctx, patientID)
	if err != nil {
		return err
	}
	kept := make([]*Allergy, 0, len(items))
	for _, a := range items {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	return s.store.Set(ctx, allergiesKey(patientID), kept)
}

func (s *Service) loadAllergies(ctx context.Context, patientID string) ([]*Allergy, error) {
	var items []*Allergy
	ok, err := s.store.Get(ctx, allergiesKey(patientID), &items)
	if err != nil {
		return nil, fmt.Errorf("load allergies: %w", err)
	}
	if !ok {
		items = demoAllergies(patientID)
		if err := s.store.Set(ctx, allergiesKey(patientID), items); err != nil {
			return nil, fmt.Errorf("seed allergies: %w", err)
		}
	}
	return items, nil
}
