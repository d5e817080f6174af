package medical

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carebridge/portal/internal/platform/kvstore"
	"github.com/carebridge/portal/internal/platform/upstream"
	"github.com/carebridge/portal/pkg/listquery"
)

func upstreamClient(t *testing.T, handler http.HandlerFunc) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return upstream.NewClient(srv.URL, time.Second, zerolog.Nop())
}

func historyEnvelope(items []*HistoryItem) []byte {
	raw, _ := json.Marshal(map[string]interface{}{"success": true, "data": items})
	return raw
}

func TestService_HistoryFetchesAndCaches(t *testing.T) {
	served := []*HistoryItem{
		{ID: "h1", Condition: "Asthma", Doctor: "Dr. Lee", DiagnosedDate: "2020-05-01", Status: HistoryChronic},
		{ID: "h2", Condition: "Migraine", Doctor: "Dr. Lee", DiagnosedDate: "2023-02-10", Status: HistoryActive},
	}
	api := upstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(historyEnvelope(served))
	})
	store := kvstore.NewMemoryStore()
	svc := NewService(api, store, zerolog.Nop())

	res, err := svc.History(context.Background(), "p-1", HistoryQuery.DefaultState())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if res.Notice != "" {
		t.Errorf("expected no notice on a live fetch, got %q", res.Notice)
	}
	if len(res.Items) != 2 || res.Items[0].ID != "h2" {
		t.Errorf("expected newest first, got %+v", res.Items)
	}
	if res.Totals.CountsByStatus[HistoryChronic] != 1 {
		t.Errorf("unexpected aggregates: %+v", res.Totals.CountsByStatus)
	}

	var cached []*HistoryItem
	if ok, _ := store.Get(context.Background(), "medical:history:p-1", &cached); !ok || len(cached) != 2 {
		t.Error("expected the fetch to be snapshotted")
	}
}

func TestService_HistoryFallsBackToSnapshot(t *testing.T) {
	api := upstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"error":"upstream down"}`))
	})
	store := kvstore.NewMemoryStore()
	snapshot := []*HistoryItem{{ID: "h1", Condition: "Asthma", Status: HistoryChronic}}
	if err := store.Set(context.Background(), "medical:history:p-1", snapshot); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewService(api, store, zerolog.Nop())

	res, err := svc.History(context.Background(), "p-1", HistoryQuery.DefaultState())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if res.Notice == "" {
		t.Error("expected a fallback notice")
	}
	if len(res.Items) != 1 || res.Items[0].ID != "h1" {
		t.Errorf("expected the snapshot, got %+v", res.Items)
	}
}

func TestService_HistoryServesSampleDataWithoutUpstream(t *testing.T) {
	svc := NewService(nil, kvstore.NewMemoryStore(), zerolog.Nop())

	res, err := svc.History(context.Background(), "p-1", HistoryQuery.DefaultState())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if res.Notice == "" {
		t.Error("expected a sample-data notice")
	}
	if len(res.Items) == 0 {
		t.Error("expected sample records")
	}
}

func TestService_HistoryFetchGuardsArePerPatient(t *testing.T) {
	svc := NewService(nil, kvstore.NewMemoryStore(), zerolog.Nop())

	guard := svc.latestFor("p-a")
	token := guard.Begin()

	// Another patient's fetch must not invalidate this one.
	svc.latestFor("p-b").Begin()
	if !guard.IsCurrent(token) {
		t.Error("another patient's fetch marked this one stale")
	}

	// A newer fetch for the same patient does.
	if svc.latestFor("p-a") != guard {
		t.Fatal("expected a stable guard per patient")
	}
	guard.Begin()
	if guard.IsCurrent(token) {
		t.Error("expected the older token to be stale after a newer fetch")
	}
}

func TestService_ConcurrentFetchesSnapshotBothPatients(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := upstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		pid := r.URL.Query().Get("patient_id")
		if pid == "p-a" {
			close(started)
			<-release
		}
		w.Write(historyEnvelope([]*HistoryItem{
			{ID: "h-" + pid, Condition: "Asthma", Status: HistoryChronic},
		}))
	})
	store := kvstore.NewMemoryStore()
	svc := NewService(api, store, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.History(context.Background(), "p-a", HistoryQuery.DefaultState()); err != nil {
			t.Errorf("history p-a: %v", err)
		}
	}()
	<-started

	// The second patient's fetch completes while the first is in flight.
	if _, err := svc.History(context.Background(), "p-b", HistoryQuery.DefaultState()); err != nil {
		t.Fatalf("history p-b: %v", err)
	}
	close(release)
	<-done

	var got []*HistoryItem
	if ok, _ := store.Get(context.Background(), "medical:history:p-a", &got); !ok || len(got) != 1 {
		t.Error("expected the first patient's fetch to be snapshotted")
	}
	if ok, _ := store.Get(context.Background(), "medical:history:p-b", &got); !ok || len(got) != 1 {
		t.Error("expected the second patient's fetch to be snapshotted")
	}
}

func TestService_HistorySearchSpansConditionAndDoctor(t *testing.T) {
	served := []*HistoryItem{
		{ID: "h1", Condition: "Asthma", Doctor: "Dr. Lee", Status: HistoryChronic},
		{ID: "h2", Condition: "Migraine", Doctor: "Dr. Patel", Status: HistoryActive},
	}
	api := upstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(historyEnvelope(served))
	})
	svc := NewService(api, kvstore.NewMemoryStore(), zerolog.Nop())

	res, err := svc.History(context.Background(), "p-1", listquery.State{
		SearchText: "patel", StatusFilter: listquery.StatusAll, SortKey: "date-desc",
	})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != "h2" {
		t.Errorf("expected the doctor match, got %+v", res.Items)
	}
	// Aggregates describe the loaded chart, not the filtered view.
	if res.Totals.Total != 2 {
		t.Errorf("expected total 2, got %d", res.Totals.Total)
	}
}

func TestService_MedicationsSeedOnFirstAccess(t *testing.T) {
	store := kvstore.NewMemoryStore()
	svc := NewService(nil, store, zerolog.Nop())
	ctx := context.Background()

	res, err := svc.Medications(ctx, "p-1", MedicationQuery.DefaultState())
	if err != nil {
		t.Fatalf("medications: %v", err)
	}
	if len(res.Items) == 0 {
		t.Fatal("expected seeded sample medications")
	}

	var persisted []*Medication
	if ok, _ := store.Get(ctx, "medical:medications:p-1", &persisted); !ok {
		t.Error("expected the seed to be persisted")
	}
}

func TestService_AddAndRemoveMedication(t *testing.T) {
	svc := NewService(nil, kvstore.NewMemoryStore(), zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.AddMedication(ctx, "p-1", &Medication{Dosage: "10mg"}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := svc.AddMedication(ctx, "p-1", &Medication{Name: "Ibuprofen", Dosage: "200mg", Status: "paused"}); err == nil {
		t.Error("expected error for invalid status")
	}

	m, err := svc.AddMedication(ctx, "p-1", &Medication{Name: "Ibuprofen", Dosage: "200mg"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.ID == "" || m.Status != MedicationActive || m.PatientID != "p-1" {
		t.Errorf("unexpected defaults: %+v", m)
	}

	res, err := svc.Medications(ctx, "p-1", listquery.State{
		SearchText: "ibuprofen", StatusFilter: listquery.StatusAll, SortKey: "name",
	})
	if err != nil {
		t.Fatalf("medications: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected the added medication, got %d items", len(res.Items))
	}

	if err := svc.RemoveMedication(ctx, "p-1", m.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	res, _ = svc.Medications(ctx, "p-1", listquery.State{
		SearchText: "ibuprofen", StatusFilter: listquery.StatusAll, SortKey: "name",
	})
	if len(res.Items) != 0 {
		t.Error("expected the medication to be gone")
	}
}

func TestService_AllergiesFilterBySeverity(t *testing.T) {
	svc := NewService(nil, kvstore.NewMemoryStore(), zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.AddAllergy(ctx, "p-1", &Allergy{Allergen: "Latex", Severity: "fatal"}); err == nil {
		t.Error("expected error for invalid severity")
	}

	res, err := svc.Allergies(ctx, "p-1", listquery.State{
		StatusFilter: SeveritySevere, SortKey: "allergen",
	})
	if err != nil {
		t.Fatalf("allergies: %v", err)
	}
	for _, a := range res.Items {
		if a.Severity != SeveritySevere {
			t.Errorf("expected only severe allergies, got %+v", a)
		}
	}
	if res.Totals.Total < len(res.Items) {
		t.Error("aggregates must cover the full loaded list")
	}
}
