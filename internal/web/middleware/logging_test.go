package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/bronze/internal/logging"
)

func TestLogger_RecordsStatusAndSize(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "text"))
	defer slog.SetDefault(prev)

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mappings/nope", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=404", "bytes=7", "path=/api/mappings/nope"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		status int
		want   slog.Level
	}{
		{http.StatusOK, slog.LevelInfo},
		{http.StatusNotModified, slog.LevelInfo},
		{http.StatusNotFound, slog.LevelWarn},
		{http.StatusServiceUnavailable, slog.LevelError},
	}

	for _, tt := range tests {
		if got := levelFor(tt.status); got != tt.want {
			t.Errorf("levelFor(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestResponseWriter_DefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.Write([]byte("ok"))
	ww.WriteHeader(http.StatusTeapot)

	if ww.status != http.StatusOK {
		t.Errorf("status = %d, want %d", ww.status, http.StatusOK)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("recorded code = %d, want %d", rec.Code, http.StatusOK)
	}
}
