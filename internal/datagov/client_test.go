package datagov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		PageLimit: 3,
		MaxPages:  4,
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// Fast retries so failure tests don't sleep.
	c.retry = RetryConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond, Multiplier: 2}
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("New() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestFetchResource(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api-key"); got != "test-key" {
			t.Errorf("api-key = %q, want %q", got, "test-key")
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		fmt.Fprint(w, `{
			"field": [{"id": "state", "name": "State", "type": "keyword"}, {"id": "rainfall_mm", "name": "Rainfall", "type": "double"}],
			"records": [{"state": "Odisha", "rainfall_mm": 120.5}],
			"total": "1",
			"count": 1
		}`)
	})

	c := newTestClient(t, handler)
	page, err := c.FetchResource(context.Background(), "abc-123", 10, 0)
	if err != nil {
		t.Fatalf("FetchResource() error = %v", err)
	}

	if page.Total != 1 {
		t.Errorf("Total = %d, want 1 (string-typed total)", page.Total)
	}
	if len(page.Records) != 1 {
		t.Fatalf("Records = %d, want 1", len(page.Records))
	}
	wantCols := []string{"state", "rainfall_mm"}
	if len(page.Columns) != len(wantCols) {
		t.Fatalf("Columns = %v, want %v", page.Columns, wantCols)
	}
	for i, col := range wantCols {
		if page.Columns[i] != col {
			t.Errorf("Columns[%d] = %q, want %q", i, page.Columns[i], col)
		}
	}
}

func TestFetchResourceMissingRecords(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total": 0}`)
	})

	c := newTestClient(t, handler)
	page, err := c.FetchResource(context.Background(), "abc-123", 10, 0)
	if err != nil {
		t.Fatalf("FetchResource() error = %v, want nil for missing records", err)
	}
	if len(page.Records) != 0 {
		t.Errorf("Records = %d, want 0", len(page.Records))
	}
}

func TestFetchResourceColumnOrderFromRecord(t *testing.T) {
	t.Parallel()

	// No field descriptors: column order must come from the record itself.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"records": [{"zeta": 1, "alpha": {"nested": true}, "mid": [1,2]}]}`)
	})

	c := newTestClient(t, handler)
	page, err := c.FetchResource(context.Background(), "abc-123", 10, 0)
	if err != nil {
		t.Fatalf("FetchResource() error = %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	if len(page.Columns) != len(want) {
		t.Fatalf("Columns = %v, want %v", page.Columns, want)
	}
	for i := range want {
		if page.Columns[i] != want[i] {
			t.Errorf("Columns[%d] = %q, want %q", i, page.Columns[i], want[i])
		}
	}
}

func TestFetchAllRecordsPaginates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset := r.URL.Query().Get("offset")

		type rec map[string]any
		var records []rec
		switch offset {
		case "0":
			records = []rec{{"n": 1}, {"n": 2}, {"n": 3}}
		case "3":
			records = []rec{{"n": 4}} // short page ends pagination
		default:
			t.Errorf("unexpected offset %q", offset)
		}

		if err := json.NewEncoder(w).Encode(map[string]any{"records": records}); err != nil {
			t.Error(err)
		}
	})

	c := newTestClient(t, handler)
	data, err := c.FetchAllRecords(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("FetchAllRecords() error = %v", err)
	}

	if len(data.Records) != 4 {
		t.Errorf("Records = %d, want 4", len(data.Records))
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestFetchAllRecordsRespectsPageCap(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always a full page: only the cap stops pagination.
		fmt.Fprint(w, `{"records": [{"n": 1}, {"n": 2}, {"n": 3}]}`)
	})

	c := newTestClient(t, handler)
	data, err := c.FetchAllRecords(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("FetchAllRecords() error = %v", err)
	}

	// 4 pages x 3 records.
	if len(data.Records) != 12 {
		t.Errorf("Records = %d, want 12 (page cap)", len(data.Records))
	}
}

func TestRetryOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"records": [{"n": 1}]}`)
	})

	c := newTestClient(t, handler)
	page, err := c.FetchResource(context.Background(), "abc-123", 10, 0)
	if err != nil {
		t.Fatalf("FetchResource() error = %v, want retry success", err)
	}
	if len(page.Records) != 1 {
		t.Errorf("Records = %d, want 1", len(page.Records))
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	c := newTestClient(t, handler)
	_, err := c.FetchResource(context.Background(), "abc-123", 10, 0)
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("FetchResource() error = %v, want ErrBadStatus", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (403 is not retryable)", got)
	}
}

func TestSearchCatalog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		status   int
		wantHits int
		wantID   string
		wantPub  string
	}{
		{
			name: "records at top level",
			body: `{"records": [
				{"index_name": "res-1", "title": "Rainfall in India", "desc": "monthly", "org": ["IMD"]},
				{"title": "No resource id, skipped"}
			]}`,
			status:   http.StatusOK,
			wantHits: 1,
			wantID:   "res-1",
			wantPub:  "IMD",
		},
		{
			name:     "records nested under result",
			body:     `{"result": {"records": [{"resource_id": "res-2", "title": "Crop production", "org": "Ministry of Agriculture"}]}}`,
			status:   http.StatusOK,
			wantHits: 1,
			wantID:   "res-2",
			wantPub:  "Ministry of Agriculture",
		},
		{
			name:     "non-200 degrades to empty",
			body:     `{"error": "nope"}`,
			status:   http.StatusNotFound,
			wantHits: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/lists" {
					t.Errorf("path = %q, want /lists", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			c := newTestClient(t, handler)
			hits, err := c.SearchCatalog(context.Background(), "rainfall", 10)
			if err != nil {
				t.Fatalf("SearchCatalog() error = %v", err)
			}
			if len(hits) != tt.wantHits {
				t.Fatalf("hits = %d, want %d", len(hits), tt.wantHits)
			}
			if tt.wantHits == 0 {
				return
			}
			if hits[0].ResourceID != tt.wantID {
				t.Errorf("ResourceID = %q, want %q", hits[0].ResourceID, tt.wantID)
			}
			if hits[0].Publisher != tt.wantPub {
				t.Errorf("Publisher = %q, want %q", hits[0].Publisher, tt.wantPub)
			}
		})
	}
}

func TestRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "429", err: &statusError{code: 429}, want: true},
		{name: "503", err: &statusError{code: 503}, want: true},
		{name: "403", err: &statusError{code: 403}, want: false},
		{name: "connection reset", err: errors.New("read tcp: connection reset by peer"), want: true},
		{name: "canceled", err: errors.New("context canceled"), want: false},
		{name: "client timeout", err: errors.New("net/http: request canceled (Client.Timeout exceeded)"), want: true},
		{name: "decode error", err: errors.New("decoding response: invalid character"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
