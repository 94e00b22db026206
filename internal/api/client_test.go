package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, 2*time.Second), srv
}

// ============================================================
// Fleet snapshot
// ============================================================

func TestFetchFleet(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/accounts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"queue_size": 2,
			"accounts": []map[string]any{
				{
					"phone_display": "81234",
					"completed":     7,
					"total":         10,
					"pct":           70,
					"status":        "pending",
					"status_raw":    "running",
					"income":        1500000,
					"balance":       2750000,
					"withdrawal":    0,
					"is_syncing":    true,
					"calendar":      []int{1, 2, 3},
					"points":        120,
					"estimation":    map[string]any{"estimated_balance": 3000000},
				},
			},
		})
	}))
	defer srv.Close()

	fleet, err := c.FetchFleet(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fleet.QueueSize != 2 {
		t.Fatalf("queue_size = %d, want 2", fleet.QueueSize)
	}
	if len(fleet.Accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(fleet.Accounts))
	}
	a := fleet.Accounts[0]
	if a.PhoneDisplay != "81234" || a.Pct != 70 || !a.IsSyncing {
		t.Fatalf("unexpected account: %+v", a)
	}
	if a.Income != 1500000 || a.Balance != 2750000 {
		t.Fatalf("unexpected figures: %+v", a)
	}
	if a.Estimation == nil || a.Estimation.EstimatedBalance != 3000000 {
		t.Fatalf("estimation not decoded: %+v", a.Estimation)
	}
	if len(a.Calendar) != 3 {
		t.Fatalf("calendar not decoded: %v", a.Calendar)
	}
}

func TestFetchFleetServerError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := c.FetchFleet(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestFetchFleetMalformedJSON(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := c.FetchFleet(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
}

// ============================================================
// Run / sync actions
// ============================================================

func TestSyncSingle(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sync_single" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if r.PostForm.Get("phone") != "81234" {
			t.Errorf("phone = %q", r.PostForm.Get("phone"))
		}
		json.NewEncoder(w).Encode(ActionReply{OK: true, Msg: "queued"})
	}))
	defer srv.Close()

	reply, err := c.SyncSingle(context.Background(), "81234")
	if err != nil {
		t.Fatal(err)
	}
	if !reply.OK || reply.Msg != "queued" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestRunSingleRejected(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run_single" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ActionReply{OK: false, Msg: "already running"})
	}))
	defer srv.Close()

	reply, err := c.RunSingle(context.Background(), "81234")
	if err != nil {
		t.Fatal(err)
	}
	if reply.OK {
		t.Fatal("expected a rejected reply")
	}
	if reply.Msg != "already running" {
		t.Fatalf("msg = %q", reply.Msg)
	}
}

// ============================================================
// History
// ============================================================

func TestFetchPnlHistory(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pnl_history" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]int64{
			"2025-06-14": 250000,
			"2025-06-15": -40000,
		})
	}))
	defer srv.Close()

	pnl, err := c.FetchPnlHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if pnl["2025-06-14"] != 250000 || pnl["2025-06-15"] != -40000 {
		t.Fatalf("unexpected pnl: %v", pnl)
	}
}

func TestFetchGlobalHistory(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/global_history" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]map[string]int64{
			"2025-06-15": {"income": 100, "balance": 200, "withdrawal": 50},
		})
	}))
	defer srv.Close()

	hist, err := c.FetchGlobalHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	p := hist["2025-06-15"]
	if p.Income != 100 || p.Balance != 200 || p.Withdrawal != 50 {
		t.Fatalf("unexpected point: %+v", p)
	}
}

// ============================================================
// Logs
// ============================================================

func TestFetchLogs(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/logs/81234" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("2025-06-15 10:00:00 INFO started\n"))
	}))
	defer srv.Close()

	text, err := c.FetchLogs(context.Background(), "81234")
	if err != nil {
		t.Fatal(err)
	}
	if text != "2025-06-15 10:00:00 INFO started\n" {
		t.Fatalf("unexpected log text %q", text)
	}
}

func TestFetchLogsNotFound(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := c.FetchLogs(context.Background(), "99999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSaveSettings(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/settings/save" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Error(err)
		}
		if payload["server_url"] != "http://example" {
			t.Errorf("server_url = %v", payload["server_url"])
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := c.SaveSettings(context.Background(), map[string]any{"server_url": "http://example"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSaveSettingsServerError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := c.SaveSettings(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

// ============================================================
// Timeouts and transport errors
// ============================================================

func TestTimeoutClassified(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	c.HTTP.Timeout = 20 * time.Millisecond

	_, err := c.FetchFleet(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestContextDeadlineClassified(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.FetchFleet(ctx)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestUnreachableServerNotTimeout(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second)
	_, err := c.FetchFleet(context.Background())
	if err == nil {
		t.Fatal("expected connection error")
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatal("a refused connection must not be classified as a timeout")
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	c := New("http://example.com/", time.Second)
	if c.BaseURL != "http://example.com" {
		t.Fatalf("base URL = %q", c.BaseURL)
	}
}
