package store

import (
	"path/filepath"
	"testing"

	"github.com/sadopc/fleetwatch/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "fleetwatch.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen, should not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetwatch.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertFleetPoint("2025-06-15", model.HistoryPoint{Income: 100}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	points, err := s2.LoadFleetHistory()
	if err != nil {
		t.Fatal(err)
	}
	if points["2025-06-15"].Income != 100 {
		t.Fatalf("cached point lost across reopen: %v", points)
	}
}

// ============================================================
// Fleet history
// ============================================================

func TestUpsertFleetPoint(t *testing.T) {
	s := newTestStore(t)

	err := s.UpsertFleetPoint("2025-06-15", model.HistoryPoint{Income: 100, Balance: 200, Withdrawal: 50})
	if err != nil {
		t.Fatal(err)
	}

	points, err := s.LoadFleetHistory()
	if err != nil {
		t.Fatal(err)
	}
	p := points["2025-06-15"]
	if p.Income != 100 || p.Balance != 200 || p.Withdrawal != 50 {
		t.Fatalf("unexpected point: %+v", p)
	}
}

func TestUpsertFleetPointOverwrites(t *testing.T) {
	s := newTestStore(t)

	s.UpsertFleetPoint("2025-06-15", model.HistoryPoint{Income: 100})
	s.UpsertFleetPoint("2025-06-15", model.HistoryPoint{Income: 999})

	points, _ := s.LoadFleetHistory()
	if len(points) != 1 {
		t.Fatalf("upsert should not duplicate the date, got %d rows", len(points))
	}
	if points["2025-06-15"].Income != 999 {
		t.Fatalf("expected overwritten income, got %d", points["2025-06-15"].Income)
	}
}

func TestReplaceFleetHistory(t *testing.T) {
	s := newTestStore(t)
	s.UpsertFleetPoint("2025-06-01", model.HistoryPoint{Income: 1})

	err := s.ReplaceFleetHistory(map[string]model.HistoryPoint{
		"2025-06-14": {Income: 100},
		"2025-06-15": {Income: 200, Balance: 300},
	})
	if err != nil {
		t.Fatal(err)
	}

	points, _ := s.LoadFleetHistory()
	if len(points) != 2 {
		t.Fatalf("replace should swap the whole series, got %d rows", len(points))
	}
	if _, ok := points["2025-06-01"]; ok {
		t.Fatal("old rows should be gone after replace")
	}
	if points["2025-06-15"].Balance != 300 {
		t.Fatalf("unexpected point: %+v", points["2025-06-15"])
	}
}

func TestLoadFleetHistoryEmpty(t *testing.T) {
	s := newTestStore(t)
	points, err := s.LoadFleetHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 0 {
		t.Fatalf("expected empty map, got %d rows", len(points))
	}
}

// ============================================================
// PnL history
// ============================================================

func TestReplaceAndLoadPnlHistory(t *testing.T) {
	s := newTestStore(t)

	err := s.ReplacePnlHistory(map[string]int64{
		"2025-06-14": 250000,
		"2025-06-15": -40000,
	})
	if err != nil {
		t.Fatal(err)
	}

	points, err := s.LoadPnlHistory()
	if err != nil {
		t.Fatal(err)
	}
	if points["2025-06-14"] != 250000 || points["2025-06-15"] != -40000 {
		t.Fatalf("unexpected pnl: %v", points)
	}
}

func TestReplacePnlHistoryClearsOld(t *testing.T) {
	s := newTestStore(t)
	s.ReplacePnlHistory(map[string]int64{"2025-06-01": 1})
	s.ReplacePnlHistory(map[string]int64{"2025-06-02": 2})

	points, _ := s.LoadPnlHistory()
	if len(points) != 1 {
		t.Fatalf("expected 1 row after replace, got %d", len(points))
	}
	if _, ok := points["2025-06-01"]; ok {
		t.Fatal("old pnl rows should be gone")
	}
}

// ============================================================
// Preferences
// ============================================================

func TestSetAndReadPref(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetPref(PrefServerURL, "http://example"); err != nil {
		t.Fatal(err)
	}
	if val := s.PrefOr(PrefServerURL, "fallback"); val != "http://example" {
		t.Fatalf("expected http://example, got %q", val)
	}
}

func TestSetPrefOverwrite(t *testing.T) {
	s := newTestStore(t)
	s.SetPref("key", "v1")
	s.SetPref("key", "v2")
	if val := s.PrefOr("key", ""); val != "v2" {
		t.Fatalf("expected v2, got %q", val)
	}
}

func TestPrefOrFallsBack(t *testing.T) {
	s := newTestStore(t)
	if val := s.PrefOr("nonexistent", "default"); val != "default" {
		t.Fatalf("expected fallback for missing pref, got %q", val)
	}
	s.SetPref("blank", "")
	if val := s.PrefOr("blank", "default"); val != "default" {
		t.Fatalf("expected fallback for empty pref, got %q", val)
	}
}

func TestSavePrefsBatch(t *testing.T) {
	s := newTestStore(t)

	err := s.SavePrefs([]Pref{
		{Key: PrefSyncCooldown, Value: "30"},
		{Key: PrefSyncPacing, Value: "1200"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if val := s.PrefOr(PrefSyncCooldown, ""); val != "30" {
		t.Fatalf("expected 30, got %q", val)
	}
	if val := s.PrefOr(PrefSyncPacing, ""); val != "1200" {
		t.Fatalf("expected 1200, got %q", val)
	}
}

func TestSavePrefsClosedStore(t *testing.T) {
	s := newTestStore(t)
	s.Close()

	err := s.SavePrefs([]Pref{{Key: PrefServerURL, Value: "http://example"}})
	if err == nil {
		t.Fatal("expected error writing to a closed store")
	}
}

func TestPrefsSorted(t *testing.T) {
	s := newTestStore(t)
	s.SetPref("b_key", "2")
	s.SetPref("a_key", "1")

	all, err := s.Prefs()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 prefs, got %d", len(all))
	}
	if all[0].Key != "a_key" || all[1].Key != "b_key" {
		t.Fatalf("prefs not sorted: %+v", all)
	}
}
