package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/bronze/internal/bronze"
	"github.com/go-chi/chi/v5"
)

// RegistryResponse is the body of GET /api/registry.
type RegistryResponse struct {
	BasePath string                 `json:"basePath"`
	Count    int                    `json:"count"`
	Mappings []bronze.MappingRecord `json:"mappings"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	mappings := s.registry.Mappings()
	writeJSON(w, http.StatusOK, RegistryResponse{
		BasePath: s.registry.BasePath(),
		Count:    len(mappings),
		Mappings: mappings,
	})
}

// handleListMappings returns all mappings, or those of ?source= when given.
func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		writeJSON(w, http.StatusOK, s.registry.Mappings())
		return
	}

	mappings := s.registry.BySource(source)
	if len(mappings) == 0 {
		respondError(w, r, http.StatusNotFound, msgUnknownSource, fmt.Errorf("unknown source: %s", source))
		return
	}
	writeJSON(w, http.StatusOK, mappings)
}

func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	rec, ok := s.registry.Lookup(table)
	if !ok {
		respondError(w, r, http.StatusNotFound, msgUnknownTable, fmt.Errorf("unknown table: %s", table))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	groups := s.registry.Groups()
	if groups == nil {
		groups = []bronze.SourceGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// handlePreflight runs a preflight bounded by the request context.
// A report that is not ready is still a 200; readiness is in the body.
func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		respondError(w, r, http.StatusServiceUnavailable, msgPreflightUnavailable, nil)
		return
	}

	report, err := s.checker.Run(r.Context(), s.registry)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, msgPreflightFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
