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
	// defaultDedupeSample bounds the payload submitted to the external
	// service.
	defaultDedupeSample  = 50
	defaultDedupeTimeout = 30 * time.Second
)

// DuplicateDetector groups records suspected to represent the same
// person. The primary path delegates fuzzy comparison to the external
// text-generation service; when the service is unavailable or returns
// unusable output, a deterministic exact-key grouping takes over. Detect
// always returns a usable report, never a network error.
type DuplicateDetector struct {
	gen      llm.TextGenerator
	reporter reporting.Reporter
	sample   int
	timeout  time.Duration
}

// NewDuplicateDetector creates a detector. gen may be nil, in which case
// every call uses the deterministic fallback directly.
func NewDuplicateDetector(gen llm.TextGenerator, reporter reporting.Reporter) *DuplicateDetector {
	return &DuplicateDetector{
		gen:      gen,
		reporter: reporter,
		sample:   defaultDedupeSample,
		timeout:  defaultDedupeTimeout,
	}
}

// SetSampleSize overrides the record cap applied before the external call.
func (d *DuplicateDetector) SetSampleSize(n int) {
	if n > 0 {
		d.sample = n
	}
}

// SetTimeout overrides the external call timeout.
func (d *DuplicateDetector) SetTimeout(t time.Duration) {
	if t > 0 {
		d.timeout = t
	}
}

// dedupeProjection is the minimal per-record view sent to the service.
type dedupeProjection struct {
	Row       int    `json:"row"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	DOB       string `json:"date_of_birth,omitempty"`
	NHSNumber string `json:"nhs_number,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type dedupeResponse struct {
	Groups []struct {
		Rows        []int    `json:"rows"`
		MatchFields []string `json:"match_fields"`
		Confidence  float64  `json:"confidence"`
	} `json:"groups"`
}

// Detect analyses the batch (capped at the configured sample size) and
// reports duplicate groups.
func (d *DuplicateDetector) Detect(ctx context.Context, records []Record) DuplicateDetection {
	sample := records
	if len(sample) > d.sample {
		sample = sample[:d.sample]
	}
	if len(sample) < 2 {
		return DuplicateDetection{Groups: []DuplicateGroup{}}
	}

	if d.gen != nil {
		if det, err := d.detectWithModel(ctx, sample); err == nil {
			return det
		} else if d.reporter != nil {
			d.reporter.Report(ctx, "duplicate_detector", "warning", err)
		}
	}

	return exactKeyGroups(sample)
}

func (d *DuplicateDetector) detectWithModel(ctx context.Context, sample []Record) (DuplicateDetection, error) {
	payload := make([]dedupeProjection, 0, len(sample))
	for i, rec := range sample {
		payload = append(payload, dedupeProjection{
			Row:       i,
			FirstName: strOrEmpty(rec.FirstName),
			LastName:  strOrEmpty(rec.LastName),
			DOB:       strOrEmpty(rec.DateOfBirth),
			NHSNumber: strOrEmpty(rec.NHSNumber),
			Email:     strOrEmpty(rec.Email),
			Phone:     strOrEmpty(rec.Phone),
		})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return DuplicateDetection{}, fmt.Errorf("marshal projection: %w", err)
	}

	prompt := fmt.Sprintf(`You are reviewing patient records for duplicates.
Identify clusters of rows that likely refer to the same person, tolerating
typos, abbreviations and formatting differences in names, dates and
contact details.

Records:
%s

Respond with a single JSON object and no other structured content:
{"groups": [{"rows": [0, 3], "match_fields": ["first_name", "last_name"], "confidence": 0.85}]}
Only include groups of two or more rows. If there are no duplicates,
respond with {"groups": []}.`, data)

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	text, err := d.gen.Generate(callCtx, prompt)
	if err != nil {
		return DuplicateDetection{}, fmt.Errorf("generate: %w", err)
	}

	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return DuplicateDetection{}, err
	}

	var resp dedupeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return DuplicateDetection{}, fmt.Errorf("unmarshal groups: %w", err)
	}

	det := DuplicateDetection{Groups: []DuplicateGroup{}}
	for _, g := range resp.Groups {
		rows := uniqueInBounds(g.Rows, len(sample))
		if len(rows) < 2 {
			continue
		}
		det.Groups = append(det.Groups, DuplicateGroup{
			Rows:        rows,
			MatchFields: g.MatchFields,
			Confidence:  clamp01(g.Confidence),
		})
		det.TotalDuplicates += len(rows) - 1
	}
	// An answer whose every group was rejected is unusable output, unlike
	// an honest "no duplicates" answer.
	if len(resp.Groups) > 0 && len(det.Groups) == 0 {
		return DuplicateDetection{}, fmt.Errorf("all %d groups rejected during sanitization", len(resp.Groups))
	}
	return det, nil
}

// exactKeyGroups is the deterministic fallback: records sharing a
// composite key of lower-cased given name, lower-cased family name and
// raw date-of-birth string form a group. Pure and side-effect free.
func exactKeyGroups(records []Record) DuplicateDetection {
	byKey := make(map[string][]int)
	order := []string{}
	for i, rec := range records {
		first := strings.ToLower(strings.TrimSpace(strOrEmpty(rec.FirstName)))
		last := strings.ToLower(strings.TrimSpace(strOrEmpty(rec.LastName)))
		dob := strOrEmpty(rec.DateOfBirth)
		if first == "" && last == "" && dob == "" {
			continue
		}
		key := first + "|" + last + "|" + dob
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], i)
	}

	det := DuplicateDetection{Groups: []DuplicateGroup{}}
	for _, key := range order {
		rows := byKey[key]
		if len(rows) < 2 {
			continue
		}
		det.Groups = append(det.Groups, DuplicateGroup{
			Rows:        rows,
			MatchFields: []string{"first_name", "last_name", "date_of_birth"},
			Confidence:  0.9,
		})
		det.TotalDuplicates += len(rows) - 1
	}
	return det
}

func uniqueInBounds(rows []int, n int) []int {
	seen := make(map[int]bool, len(rows))
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		if r < 0 || r >= n || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
