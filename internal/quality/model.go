// Package quality implements the patient-record data-quality pipeline:
// deterministic field validation, duplicate-record detection, and
// correction suggestion over pre-persistence record batches. All three
// analyses are read-only and side-effect free; callers merge their
// independent reports for presentation.
package quality

// Severity grades a validation error.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Record is a single patient row within an import batch, identified by its
// ordinal position. Fields are pointers so that an absent field is
// distinguishable from an empty one.
type Record struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	NHSNumber   *string `json:"nhs_number,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Postcode    *string `json:"postcode,omitempty"`
}

// ValidationError reports a field that is missing or provably invalid.
type ValidationError struct {
	Field    string   `json:"field"`
	Row      int      `json:"row"`
	Value    string   `json:"value"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationWarning reports a value that is suspicious but not provably
// wrong, such as an identifier of the right shape failing its checksum.
type ValidationWarning struct {
	Field   string `json:"field"`
	Row     int    `json:"row"`
	Value   string `json:"value"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationSuggestion proposes a replacement value. Suggestions are never
// applied automatically; persistence of accepted corrections is the
// caller's responsibility.
type ValidationSuggestion struct {
	Field      string  `json:"field"`
	Row        int     `json:"row"`
	Value      string  `json:"value"`
	Suggested  string  `json:"suggested"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ValidationResult describes a whole batch. Valid is true iff no
// critical-severity error exists anywhere in the batch.
type ValidationResult struct {
	Valid       bool                   `json:"valid"`
	Errors      []ValidationError      `json:"errors"`
	Warnings    []ValidationWarning    `json:"warnings"`
	Suggestions []ValidationSuggestion `json:"suggestions"`
	Score       int                    `json:"score"`
}

// DuplicateGroup is a set of row indices believed to denote the same
// person. Rows never repeat within a group and a group always has at
// least two members.
type DuplicateGroup struct {
	Rows        []int    `json:"rows"`
	MatchFields []string `json:"match_fields"`
	Confidence  float64  `json:"confidence"`
}

// DuplicateDetection is the duplicate detector's report for one batch.
type DuplicateDetection struct {
	Groups          []DuplicateGroup `json:"groups"`
	TotalDuplicates int              `json:"total_duplicates"`
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
