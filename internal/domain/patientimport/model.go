// Package patientimport is the bulk patient-import flow: it feeds record
// batches through the data-quality pipeline and returns the merged report
// to the uploading client. Accepted corrections are applied elsewhere;
// this package only analyses and records the outcome of each run.
package patientimport

import (
	"time"

	"github.com/google/uuid"

	"github.com/medloop/medloop/internal/quality"
)

// ImportJob summarises one validation run over an uploaded batch.
type ImportJob struct {
	ID              uuid.UUID `db:"id" json:"id"`
	TenantID        string    `db:"tenant_id" json:"tenant_id"`
	RecordCount     int       `db:"record_count" json:"record_count"`
	ErrorCount      int       `db:"error_count" json:"error_count"`
	WarningCount    int       `db:"warning_count" json:"warning_count"`
	SuggestionCount int       `db:"suggestion_count" json:"suggestion_count"`
	DuplicateCount  int       `db:"duplicate_count" json:"duplicate_count"`
	Score           int       `db:"score" json:"score"`
	Valid           bool      `db:"valid" json:"valid"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Report is the merged result returned to the uploading client. The
// three analyses are independent; merging them is purely presentational.
type Report struct {
	JobID       uuid.UUID                      `json:"job_id"`
	Validation  *quality.ValidationResult      `json:"validation"`
	Duplicates  quality.DuplicateDetection     `json:"duplicates"`
	Corrections []quality.ValidationSuggestion `json:"corrections"`
}
