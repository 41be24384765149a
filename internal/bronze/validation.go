package bronze

// validation.go checks registry input before a Registry is built.
//
// Validation covers the base path and every entry:
//  1. Base path: present, absolute, not the filesystem root
//  2. Entries: source, path and table present
//  3. Paths: relative and local to the base path
//  4. Tables: valid identifiers, unique across entries (case-insensitive)
//
// All failures are collected so a broken manifest can be fixed in one pass.

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ErrInvalidRegistry matches any ValidationErrors via errors.Is.
var ErrInvalidRegistry = errors.New("invalid registry")

// tableNameRegex matches unquoted SQL identifiers.
var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError describes one invalid field.
// Index is the entry position, or -1 for the base path.
type ValidationError struct {
	Index   int
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("mappings[%d].%s: %s", e.Index, e.Field, e.Message)
}

// ValidationErrors is the list of problems found while building a Registry.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Is reports whether target is ErrInvalidRegistry.
func (errs ValidationErrors) Is(target error) bool {
	return target == ErrInvalidRegistry
}

// validate returns nil or a non-empty ValidationErrors.
func validate(basePath string, entries []Entry) error {
	var errs ValidationErrors

	base := strings.TrimSpace(basePath)
	switch {
	case base == "":
		errs = append(errs, ValidationError{Index: -1, Field: "basePath", Message: "is required"})
	case !path.IsAbs(base):
		errs = append(errs, ValidationError{Index: -1, Field: "basePath", Value: basePath, Message: "must be an absolute path"})
	case cleanBasePath(base) == "/":
		errs = append(errs, ValidationError{Index: -1, Field: "basePath", Value: basePath, Message: "must not be the filesystem root"})
	}

	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Source) == "" {
			errs = append(errs, ValidationError{Index: i, Field: "source", Message: "is required"})
		}

		if msg := checkRelPath(e.Path); msg != "" {
			errs = append(errs, ValidationError{Index: i, Field: "path", Value: e.Path, Message: msg})
		}

		table := strings.TrimSpace(e.Table)
		if table == "" {
			errs = append(errs, ValidationError{Index: i, Field: "table", Message: "is required"})
			continue
		}
		if !tableNameRegex.MatchString(table) {
			errs = append(errs, ValidationError{Index: i, Field: "table", Value: e.Table, Message: "must be a letter or underscore followed by letters, digits or underscores"})
			continue
		}

		key := strings.ToLower(table)
		if first, dup := seen[key]; dup {
			errs = append(errs, ValidationError{
				Index:   i,
				Field:   "table",
				Value:   e.Table,
				Message: fmt.Sprintf("duplicates mappings[%d]", first),
			})
			continue
		}
		seen[key] = i
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkRelPath returns a message describing why rel is unusable, or "".
func checkRelPath(rel string) string {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "is required"
	}
	if path.IsAbs(rel) {
		return "must be relative to the base path"
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "must name a file under the base path"
	}
	if strings.HasSuffix(rel, "/") {
		return "must name a file, not a directory"
	}
	return ""
}
