// Package reporting provides the out-of-band error-reporting collaborator
// used by components that degrade silently, such as the duplicate
// detector falling back when the text-generation service misbehaves.
// Reporting is strictly best-effort: a failure to persist a report must
// never propagate into the calling component.
package reporting

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Reporter records an error originating from a named component.
type Reporter interface {
	Report(ctx context.Context, component, severity string, err error)
}

// PGReporter persists error reports to the shared error_reports table.
type PGReporter struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPGReporter creates a Postgres-backed reporter. The logger only
// receives debug records about reports that could not be written.
func NewPGReporter(pool *pgxpool.Pool, logger zerolog.Logger) *PGReporter {
	return &PGReporter{pool: pool, logger: logger}
}

func (r *PGReporter) Report(ctx context.Context, component, severity string, err error) {
	if err == nil {
		return
	}

	var stack [4096]byte
	n := runtime.Stack(stack[:], false)

	// Detach from the caller's deadline; the caller may already be
	// cancelled, and the report should still have a chance to land.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	_, insertErr := r.pool.Exec(ctx,
		`INSERT INTO error_reports (id, component, severity, message, stack, reported_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), component, severity, err.Error(), string(stack[:n]), time.Now().UTC(),
	)
	if insertErr != nil {
		r.logger.Debug().
			Err(insertErr).
			Str("component", component).
			Msg("error report not persisted")
	}
}

// LogReporter writes reports to the application log. Used in development
// and as the default when no database pool is available.
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter creates a log-backed reporter.
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(_ context.Context, component, severity string, err error) {
	if err == nil {
		return
	}
	r.logger.Warn().
		Str("component", component).
		Str("severity", severity).
		Err(err).
		Msg("component error")
}
