package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/JonMunkholm/bronze/internal/bronze"
	"github.com/JonMunkholm/bronze/internal/bronze/sources"
	"github.com/JonMunkholm/bronze/internal/config"
	"github.com/JonMunkholm/bronze/internal/preflight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, checker *preflight.Checker) *Server {
	t.Helper()
	return NewServer(sources.Default(), checker, config.ServerConfig{})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRegistry(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/api/registry")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[RegistryResponse](t, rec)
	assert.Equal(t, sources.DefaultBasePath, body.BasePath)
	assert.Equal(t, 6, body.Count)
	assert.Equal(t, sources.Default().Mappings(), body.Mappings)
}

func TestListMappings(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name      string
		target    string
		wantCount int
		wantFirst string
	}{
		{"all", "/api/mappings", 6, "crm_cust_info_raw"},
		{"crm", "/api/mappings?source=crm", 3, "crm_cust_info_raw"},
		{"erp", "/api/mappings?source=erp", 3, "erp_cust_az12_raw"},
		{"blank source lists all", "/api/mappings?source=%20", 6, "crm_cust_info_raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)

			got := decode[[]bronze.MappingRecord](t, rec)
			require.Len(t, got, tt.wantCount)
			assert.Equal(t, tt.wantFirst, got[0].Table)
		})
	}
}

func TestListMappings_UnknownSource(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/api/mappings?source=hr")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "REG002", body.Code)
	assert.NotContains(t, body.Message, "hr")
}

func TestGetMapping(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/api/mappings/ERP_LOC_A101_RAW")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[bronze.MappingRecord](t, rec)
	assert.Equal(t, bronze.MappingRecord{
		Source: "erp",
		Path:   "/Volumes/workspace/bronze/raw_files/source_erp/LOC_A101.csv",
		Table:  "erp_loc_a101_raw",
	}, got)

	rec = get(t, s, "/api/mappings/gold_customers")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "REG001", decode[ErrorResponse](t, rec).Code)
}

func TestListSources(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []bronze.SourceGroup{
		{Name: "crm", Tables: []string{"crm_cust_info_raw", "crm_prd_info_raw", "crm_sales_details_raw"}},
		{Name: "erp", Tables: []string{"erp_cust_az12_raw", "erp_loc_a101_raw", "erp_px_cat_g1v2_raw"}},
	}, decode[[]bronze.SourceGroup](t, rec))
}

func TestListSources_EmptyRegistry(t *testing.T) {
	s := NewServer(bronze.MustNew("/raw", nil), nil, config.ServerConfig{})

	rec := get(t, s, "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestPreflight_Unavailable(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/api/preflight")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "PRE001", decode[ErrorResponse](t, rec).Code)
}

func TestPreflight_Report(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, m := range sources.Default().Mappings() {
		if m.Source == sources.CRM {
			fsys[m.Path[1:]] = &fstest.MapFile{Data: []byte("id\n")}
		}
	}
	s := newTestServer(t, preflight.NewChecker(preflight.WithFS(fsys)))

	rec := get(t, s, "/api/preflight")
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[preflight.Report](t, rec)
	assert.False(t, report.Ready)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Results, 6)
	assert.Len(t, report.NotReady(), 3)
	for _, res := range report.NotReady() {
		assert.Equal(t, sources.ERP, res.Source)
		assert.Equal(t, preflight.StatusMissing, res.FileStatus)
		assert.Equal(t, preflight.StatusSkipped, res.TableStatus)
	}
}

func TestPreflight_Cancelled(t *testing.T) {
	s := newTestServer(t, preflight.NewChecker(preflight.WithFS(fstest.MapFS{})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/preflight", nil).WithContext(ctx)
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "PRE002", decode[ErrorResponse](t, rec).Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/api/tables")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShutdown_NotStarted(t *testing.T) {
	assert.NoError(t, newTestServer(t, nil).Shutdown(context.Background()))
}
