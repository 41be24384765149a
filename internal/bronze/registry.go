package bronze

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Registry is an immutable, ordered list of mapping records sharing one base path.
// The zero value is an empty registry with no base path.
type Registry struct {
	basePath string
	records  []MappingRecord
	byTable  map[string]int
}

// New validates entries and builds a Registry rooted at basePath.
// Records keep the declaration order of entries.
// Returns ValidationErrors describing every invalid entry.
func New(basePath string, entries []Entry) (*Registry, error) {
	if err := validate(basePath, entries); err != nil {
		return nil, err
	}

	base := cleanBasePath(basePath)
	r := &Registry{
		basePath: base,
		records:  make([]MappingRecord, len(entries)),
		byTable:  make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		r.records[i] = MappingRecord{
			Source: strings.TrimSpace(e.Source),
			Path:   joinPath(base, e.Path),
			Table:  strings.TrimSpace(e.Table),
		}
		r.byTable[strings.ToLower(r.records[i].Table)] = i
	}

	return r, nil
}

// MustNew is like New but panics on invalid input.
// Use it only for catalogs compiled into the binary.
func MustNew(basePath string, entries []Entry) *Registry {
	r, err := New(basePath, entries)
	if err != nil {
		panic(fmt.Sprintf("bronze: %v", err))
	}
	return r
}

// BasePath returns the root directory shared by all raw files.
func (r *Registry) BasePath() string {
	return r.basePath
}

// Mappings returns every record in declaration order.
// The returned slice is a copy; callers may modify it freely.
func (r *Registry) Mappings() []MappingRecord {
	out := make([]MappingRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Lookup returns the record writing to table.
// Table names match case-insensitively.
func (r *Registry) Lookup(table string) (MappingRecord, bool) {
	i, ok := r.byTable[strings.ToLower(strings.TrimSpace(table))]
	if !ok {
		return MappingRecord{}, false
	}
	return r.records[i], true
}

// BySource returns the records for one source system in declaration order.
// Returns nil if the source is unknown.
func (r *Registry) BySource(source string) []MappingRecord {
	var result []MappingRecord
	for _, rec := range r.records {
		if rec.Source == source {
			result = append(result, rec)
		}
	}
	return result
}

// Sources returns the unique source names, sorted alphabetically.
func (r *Registry) Sources() []string {
	seen := make(map[string]bool)
	var sources []string
	for _, rec := range r.records {
		if !seen[rec.Source] {
			seen[rec.Source] = true
			sources = append(sources, rec.Source)
		}
	}
	sort.Strings(sources)
	return sources
}

// Groups returns the tables of each source, ordered like Sources.
func (r *Registry) Groups() []SourceGroup {
	sources := r.Sources()
	groups := make([]SourceGroup, len(sources))
	for i, src := range sources {
		groups[i].Name = src
		for _, rec := range r.BySource(src) {
			groups[i].Tables = append(groups[i].Tables, rec.Table)
		}
	}
	return groups
}

// cleanBasePath trims and lexically cleans basePath.
// The result never ends in "/" unless it is the root itself.
func cleanBasePath(basePath string) string {
	return path.Clean(strings.TrimSpace(basePath))
}

// joinPath concatenates base and the cleaned form of rel.
// rel has already been validated as local to base.
func joinPath(base, rel string) string {
	return base + "/" + path.Clean(strings.TrimSpace(rel))
}
