// Package preflight reports whether each registry mapping is ready to ingest.
//
// A preflight never reads file contents or writes rows. For every mapping it
// checks that the raw file exists (fs.Stat) and that the destination table
// exists (Postgres to_regclass). Missing pieces are reported, not fixed; the
// ingestion job remains responsible for acting on them.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/JonMunkholm/bronze/internal/bronze"
	"github.com/JonMunkholm/bronze/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrent is the default limit for parallel checks.
const DefaultMaxConcurrent = 4

// DefaultSchema is the schema searched for raw tables when none is given.
const DefaultSchema = "bronze"

const tableExistsSQL = `SELECT to_regclass($1) IS NOT NULL`

// Querier runs single-row queries. Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Status is the outcome of one check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Result holds both checks for one mapping.
type Result struct {
	Source      string `json:"source"`
	Table       string `json:"table"`
	Path        string `json:"path"`
	FileStatus  Status `json:"fileStatus"`
	FileError   string `json:"fileError,omitempty"`
	TableStatus Status `json:"tableStatus"`
	TableError  string `json:"tableError,omitempty"`
}

// Ready reports whether no check is missing or failed.
func (r Result) Ready() bool {
	return r.FileStatus != StatusMissing && r.FileStatus != StatusError &&
		r.TableStatus != StatusMissing && r.TableStatus != StatusError
}

// Report is the outcome of one preflight run, in registry order.
type Report struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
	Ready      bool      `json:"ready"`
	Results    []Result  `json:"results"`
}

// NotReady returns the results with a missing or failed check.
func (r *Report) NotReady() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Ready() {
			out = append(out, res)
		}
	}
	return out
}

// Checker runs preflight checks against a registry.
type Checker struct {
	fsys          fs.FS
	db            Querier
	schema        string
	maxConcurrent int
	checkFiles    bool
	checkTables   bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithFS sets the filesystem used to stat raw files.
// Registry paths are resolved relative to the root of fsys.
func WithFS(fsys fs.FS) Option {
	return func(c *Checker) {
		c.fsys = fsys
	}
}

// WithDB enables table checks against db within schema.
// An empty schema selects DefaultSchema.
func WithDB(db Querier, schema string) Option {
	return func(c *Checker) {
		c.db = db
		if schema != "" {
			c.schema = schema
		}
	}
}

// WithMaxConcurrent bounds parallel checks. Values <= 0 select DefaultMaxConcurrent.
func WithMaxConcurrent(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithFiles toggles file checks.
func WithFiles(enabled bool) Option {
	return func(c *Checker) {
		c.checkFiles = enabled
	}
}

// WithTables toggles table checks. Table checks are skipped without a DB.
func WithTables(enabled bool) Option {
	return func(c *Checker) {
		c.checkTables = enabled
	}
}

// NewChecker creates a Checker. By default it stats files on the host
// filesystem, checks tables only if WithDB is given, and runs
// DefaultMaxConcurrent checks at a time.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		fsys:          os.DirFS("/"),
		schema:        DefaultSchema,
		maxConcurrent: DefaultMaxConcurrent,
		checkFiles:    true,
		checkTables:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks every mapping of reg and returns a report in registry order.
// Missing files or tables do not fail the run; only cancellation does.
func (c *Checker) Run(ctx context.Context, reg *bronze.Registry) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("preflight: %w", err)
	}

	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	logger := logging.WithFields(ctx, "run_id", report.RunID)
	logger.Debug("preflight started", "mappings", reg.Len(), "base_path", reg.BasePath())

	records := reg.Mappings()
	results := make([]Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			res, err := c.check(gctx, rec)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("preflight %s: %w", report.RunID, err)
	}

	report.Results = results
	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	report.Ready = len(report.NotReady()) == 0

	c.logSummary(logger, reg, report)
	return report, nil
}

// check runs both checks for rec. The error is non-nil only if ctx is done.
func (c *Checker) check(ctx context.Context, rec bronze.MappingRecord) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{
		Source:      rec.Source,
		Table:       rec.Table,
		Path:        rec.Path,
		FileStatus:  StatusSkipped,
		TableStatus: StatusSkipped,
	}

	if c.checkFiles && c.fsys != nil {
		res.FileStatus, res.FileError = c.checkFile(rec.Path)
	}

	if c.checkTables && c.db != nil {
		status, msg := c.checkTable(ctx, rec.Table)
		if status == StatusError && ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		res.TableStatus, res.TableError = status, msg
	}

	return res, nil
}

func (c *Checker) checkFile(p string) (Status, string) {
	info, err := fs.Stat(c.fsys, strings.TrimPrefix(p, "/"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return StatusMissing, ""
	case err != nil:
		return StatusError, err.Error()
	case info.IsDir():
		return StatusError, "path is a directory"
	}
	return StatusOK, ""
}

func (c *Checker) checkTable(ctx context.Context, table string) (Status, string) {
	var exists bool
	if err := c.db.QueryRow(ctx, tableExistsSQL, c.QualifiedName(table)).Scan(&exists); err != nil {
		return StatusError, fmt.Sprintf("check table: %v", err)
	}
	if !exists {
		return StatusMissing, ""
	}
	return StatusOK, ""
}

// QualifiedName returns the quoted schema-qualified name looked up for table.
// Unquoted identifiers fold to lower case in Postgres, so the table is lowered.
func (c *Checker) QualifiedName(table string) string {
	return pgx.Identifier{c.schema, strings.ToLower(table)}.Sanitize()
}

// logSummary writes one line per source and a warning per unready mapping.
func (c *Checker) logSummary(logger *slog.Logger, reg *bronze.Registry, report *Report) {
	for _, src := range reg.Sources() {
		srcLogger := logging.ForSource(logger, src)

		var total, notReady int
		for _, res := range report.Results {
			if res.Source != src {
				continue
			}
			total++
			if !res.Ready() {
				notReady++
				srcLogger.Warn("mapping not ready",
					"table", res.Table,
					"path", res.Path,
					"file", res.FileStatus,
					"table_status", res.TableStatus,
				)
			}
		}

		srcLogger.Info("preflight source checked", "mappings", total, "not_ready", notReady)
	}

	logger.Info("preflight completed",
		"ready", report.Ready,
		"mappings", len(report.Results),
		"duration_ms", report.DurationMS,
	)
}
