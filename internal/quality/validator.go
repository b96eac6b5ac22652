package quality

import (
	"math"
	"strings"
	"time"
)

// fieldSlotsPerRecord is the number of tracked field slots used by the
// quality score: name, email, phone, NHS number, date of birth, postcode,
// plus one slot reserved for future fields.
const fieldSlotsPerRecord = 7

// Validator applies the configured field rules to record batches and
// aggregates the outcome into a single ValidationResult. It is stateless
// and safe for concurrent use.
type Validator struct {
	rules Rules
}

// NewValidator creates a Validator for the given jurisdiction rules.
func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// ValidateBatch runs every field check against every record, in order,
// and computes the batch quality score. Warnings and suggestions never
// affect the score; only critical and high severity errors do.
func (v *Validator) ValidateBatch(records []Record) *ValidationResult {
	result := &ValidationResult{
		Errors:      []ValidationError{},
		Warnings:    []ValidationWarning{},
		Suggestions: []ValidationSuggestion{},
	}

	for row, rec := range records {
		v.checkName(row, rec, result)
		v.checkEmail(row, rec, result)
		v.checkNHSNumber(row, rec, result)
		v.checkPhone(row, rec, result)
		v.checkPostcode(row, rec, result)
		v.checkDateOfBirth(row, rec, result)
	}

	result.Score = v.score(len(records), result.Errors)
	result.Valid = !hasCritical(result.Errors)
	return result
}

// score maps the density of critical/high errors onto [0,100]. An empty
// batch scores 100: no data, no defects.
func (v *Validator) score(recordCount int, errors []ValidationError) int {
	slots := recordCount * fieldSlotsPerRecord
	if slots == 0 {
		return 100
	}

	high := 0
	for _, e := range errors {
		if e.Severity == SeverityCritical || e.Severity == SeverityHigh {
			high++
		}
	}

	score := int(math.Round(100 * float64(slots-high) / float64(slots)))
	if score < 0 {
		score = 0
	}
	return score
}

func hasCritical(errors []ValidationError) bool {
	for _, e := range errors {
		if e.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// checkName requires both given and family names. A missing component is
// a critical error on the synthetic "name" field combining both inputs.
func (v *Validator) checkName(row int, rec Record, result *ValidationResult) {
	first := strings.TrimSpace(strOrEmpty(rec.FirstName))
	last := strings.TrimSpace(strOrEmpty(rec.LastName))
	if first != "" && last != "" {
		return
	}
	result.Errors = append(result.Errors, ValidationError{
		Field:    "name",
		Row:      row,
		Value:    strings.TrimSpace(first + " " + last),
		Message:  "first name and last name are required",
		Severity: SeverityCritical,
	})
}

func (v *Validator) checkEmail(row int, rec Record, result *ValidationResult) {
	if rec.Email == nil {
		return
	}
	if v.rules.Email.MatchString(strings.TrimSpace(*rec.Email)) {
		return
	}
	result.Errors = append(result.Errors, ValidationError{
		Field:    "email",
		Row:      row,
		Value:    *rec.Email,
		Message:  "invalid email format",
		Severity: SeverityMedium,
	})
}

// checkNHSNumber reports shape and checksum failures as format warnings
// rather than errors: upstream data sources vary in reliability, so a
// failing identifier is suspicious but not grounds for rejection.
func (v *Validator) checkNHSNumber(row int, rec Record, result *ValidationResult) {
	if rec.NHSNumber == nil {
		return
	}
	cleaned := stripSpaces(*rec.NHSNumber)
	if !v.rules.Identifier.MatchString(cleaned) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "nhs_number",
			Row:     row,
			Value:   *rec.NHSNumber,
			Message: "NHS number must be 10 digits",
			Type:    "format",
		})
		return
	}
	if !ValidNHSChecksum(cleaned) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "nhs_number",
			Row:     row,
			Value:   *rec.NHSNumber,
			Message: "NHS number failed checksum validation",
			Type:    "format",
		})
	}
}

// checkPhone proposes a reformatted number when the input fails the
// national pattern. The proposal is only emitted if it differs from the
// input and itself passes the pattern.
func (v *Validator) checkPhone(row int, rec Record, result *ValidationResult) {
	if rec.Phone == nil {
		return
	}
	value := strings.TrimSpace(*rec.Phone)
	if v.rules.Phone.MatchString(value) {
		return
	}
	formatted, ok := v.rules.FormatPhone(value)
	if !ok || formatted == value || !v.rules.Phone.MatchString(formatted) {
		return
	}
	result.Suggestions = append(result.Suggestions, ValidationSuggestion{
		Field:      "phone",
		Row:        row,
		Value:      *rec.Phone,
		Suggested:  formatted,
		Confidence: 0.8,
		Reason:     "reformatted to national phone format",
	})
}

func (v *Validator) checkPostcode(row int, rec Record, result *ValidationResult) {
	if rec.Postcode == nil {
		return
	}
	value := strings.TrimSpace(*rec.Postcode)
	if v.rules.Postcode.MatchString(value) {
		return
	}
	formatted, ok := v.rules.FormatPostcode(value)
	if !ok || formatted == value {
		return
	}
	result.Suggestions = append(result.Suggestions, ValidationSuggestion{
		Field:      "postcode",
		Row:        row,
		Value:      *rec.Postcode,
		Suggested:  formatted,
		Confidence: 0.9,
		Reason:     "reformatted to canonical postcode",
	})
}

func (v *Validator) checkDateOfBirth(row int, rec Record, result *ValidationResult) {
	if rec.DateOfBirth == nil {
		return
	}
	value := strings.TrimSpace(*rec.DateOfBirth)

	parsed, ok := v.rules.ParseDate(value)
	if !ok {
		v.dobError(row, *rec.DateOfBirth, "invalid date format", result)
		return
	}

	now := v.rules.now()
	if parsed.After(now) {
		v.dobError(row, *rec.DateOfBirth, "date of birth cannot be in the future", result)
		return
	}
	if parsed.Before(now.AddDate(-v.rules.MaxAgeYears, 0, 0)) {
		v.dobError(row, *rec.DateOfBirth, "age exceeds plausible maximum", result)
	}
}

func (v *Validator) dobError(row int, value, message string, result *ValidationResult) {
	result.Errors = append(result.Errors, ValidationError{
		Field:    "date_of_birth",
		Row:      row,
		Value:    value,
		Message:  message,
		Severity: SeverityHigh,
	})
}

// ParseDate tries each configured layout in order.
func (r Rules) ParseDate(value string) (time.Time, bool) {
	for _, layout := range r.DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
