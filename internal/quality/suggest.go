package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/medloop/medloop/internal/platform/llm"
	"github.com/medloop/medloop/internal/platform/reporting"
)

const (
	defaultSuggestSample  = 20
	defaultSuggestTimeout = 30 * time.Second
)

// CorrectionSuggester requests normalized field values from the external
// text-generation service for records exhibiting local format
// violations. Unlike the duplicate detector it has no deterministic
// substitute: arbitrary free-text correction has no safe non-ML
// fallback, so any failure yields an empty suggestion set.
type CorrectionSuggester struct {
	gen      llm.TextGenerator
	reporter reporting.Reporter
	rules    Rules
	sample   int
	timeout  time.Duration
}

// NewCorrectionSuggester creates a suggester using the given rules for
// local pre-flagging. gen may be nil, in which case Suggest always
// returns an empty set.
func NewCorrectionSuggester(gen llm.TextGenerator, reporter reporting.Reporter, rules Rules) *CorrectionSuggester {
	return &CorrectionSuggester{
		gen:      gen,
		reporter: reporter,
		rules:    rules,
		sample:   defaultSuggestSample,
		timeout:  defaultSuggestTimeout,
	}
}

// SetSampleSize overrides the flagged-record cap.
func (s *CorrectionSuggester) SetSampleSize(n int) {
	if n > 0 {
		s.sample = n
	}
}

// SetTimeout overrides the external call timeout.
func (s *CorrectionSuggester) SetTimeout(t time.Duration) {
	if t > 0 {
		s.timeout = t
	}
}

type flaggedRecord struct {
	Row    int      `json:"row"`
	Fields []string `json:"fields"`
	Record Record   `json:"record"`
}

type correctionResponse struct {
	Corrections []struct {
		Row        int     `json:"row"`
		Field      string  `json:"field"`
		Original   string  `json:"original"`
		Suggested  string  `json:"suggested"`
		Confidence float64 `json:"confidence"`
		Reason     string  `json:"reason"`
	} `json:"corrections"`
}

// Suggest returns correction proposals for records with at least one
// local format violation. When no record is flagged, it returns
// immediately without calling the external service.
func (s *CorrectionSuggester) Suggest(ctx context.Context, records []Record) []ValidationSuggestion {
	flagged := s.flag(records)
	if len(flagged) == 0 || s.gen == nil {
		return []ValidationSuggestion{}
	}

	suggestions, err := s.suggestWithModel(ctx, flagged, len(records))
	if err != nil {
		if s.reporter != nil {
			s.reporter.Report(ctx, "correction_suggester", "warning", err)
		}
		return []ValidationSuggestion{}
	}
	return suggestions
}

// flag selects records with an email, phone or date-of-birth format
// violation, independent of the record validator's own pass, capped at
// the sample size.
func (s *CorrectionSuggester) flag(records []Record) []flaggedRecord {
	flagged := []flaggedRecord{}
	for i, rec := range records {
		var fields []string
		if rec.Email != nil && !s.rules.Email.MatchString(strings.TrimSpace(*rec.Email)) {
			fields = append(fields, "email")
		}
		if rec.Phone != nil && !s.rules.Phone.MatchString(strings.TrimSpace(*rec.Phone)) {
			fields = append(fields, "phone")
		}
		if rec.DateOfBirth != nil {
			if _, ok := s.rules.ParseDate(strings.TrimSpace(*rec.DateOfBirth)); !ok {
				fields = append(fields, "date_of_birth")
			}
		}
		if len(fields) == 0 {
			continue
		}
		flagged = append(flagged, flaggedRecord{Row: i, Fields: fields, Record: rec})
		if len(flagged) == s.sample {
			break
		}
	}
	return flagged
}

func (s *CorrectionSuggester) suggestWithModel(ctx context.Context, flagged []flaggedRecord, batchLen int) ([]ValidationSuggestion, error) {
	data, err := json.Marshal(flagged)
	if err != nil {
		return nil, fmt.Errorf("marshal flagged records: %w", err)
	}

	prompt := fmt.Sprintf(`You are cleaning patient records. For each flagged
field below, propose a corrected value: dates of birth in ISO format
(YYYY-MM-DD), phone numbers in UK national format, obvious email typos
fixed, and names properly capitalised. Do not invent data that is not
derivable from the input.

Flagged records:
%s

Respond with a single JSON object and no other structured content:
{"corrections": [{"row": 0, "field": "date_of_birth", "original": "15.5.1975", "suggested": "1975-05-15", "confidence": 0.9, "reason": "reformatted to ISO date"}]}
If a field cannot be corrected confidently, omit it.`, data)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var resp correctionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal corrections: %w", err)
	}

	suggestions := make([]ValidationSuggestion, 0, len(resp.Corrections))
	for _, c := range resp.Corrections {
		if c.Row < 0 || c.Row >= batchLen || c.Suggested == "" {
			continue
		}
		suggestions = append(suggestions, ValidationSuggestion{
			Field:      c.Field,
			Row:        c.Row,
			Value:      c.Original,
			Suggested:  c.Suggested,
			Confidence: clamp01(c.Confidence),
			Reason:     c.Reason,
		})
	}
	return suggestions, nil
}
