package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// FakeResource is one resource served by the fake data.gov.in server.
type FakeResource struct {
	Columns []string
	Records []map[string]any
}

// FakeCatalogEntry is one /lists search result.
type FakeCatalogEntry struct {
	ResourceID string
	Title      string
	Org        string
}

// FakeDataGov serves the two data.gov.in endpoints the client uses:
// /resource/{id} for records and /lists for catalog search. Search matching
// is naive substring-on-title, which is close enough to the real platform
// for tests.
type FakeDataGov struct {
	Resources map[string]FakeResource
	Catalog   []FakeCatalogEntry
}

// Start runs the fake server, shut down with t.Cleanup.
func (f *FakeDataGov) Start(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /resource/{id}", f.resource)
	mux.HandleFunc("GET /lists", f.lists)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *FakeDataGov) resource(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("api-key") == "" {
		http.Error(w, `{"message": "api key missing"}`, http.StatusForbidden)
		return
	}

	res, ok := f.Resources[r.PathValue("id")]
	if !ok {
		http.Error(w, `{"message": "resource not found"}`, http.StatusNotFound)
		return
	}

	fields := make([]map[string]string, len(res.Columns))
	for i, c := range res.Columns {
		fields[i] = map[string]string{"id": c, "name": c}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"field":   fields,
		"records": res.Records,
		"total":   len(res.Records),
	})
}

func (f *FakeDataGov) lists(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("api-key") == "" {
		http.Error(w, `{"message": "api key missing"}`, http.StatusForbidden)
		return
	}

	query := r.URL.Query().Get("filters[title]")
	var records []map[string]any
	for _, e := range f.Catalog {
		if query != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) {
			continue
		}
		records = append(records, map[string]any{
			"resource_id": e.ResourceID,
			"title":       e.Title,
			"org":         []string{e.Org},
		})
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"records": records,
		"total":   len(records),
	})
}
