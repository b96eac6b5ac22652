package quality

import (
	"regexp"
	"time"
)

// Rules holds the jurisdiction-specific validation patterns and date
// layouts. A Rules value is injected into the pipeline components at
// construction, so a deployment can substitute another locale without
// code change.
type Rules struct {
	Email      *regexp.Regexp
	Phone      *regexp.Regexp
	Postcode   *regexp.Regexp
	Identifier *regexp.Regexp

	// DateLayouts are tried in order when parsing a date of birth.
	DateLayouts []string

	// MaxAgeYears bounds a plausible date of birth.
	MaxAgeYears int

	// Now supplies the current time for plausibility checks. Tests inject
	// a fixed clock; zero value falls back to time.Now.
	Now func() time.Time
}

// UKRules returns the validation rules for a United Kingdom deployment:
// NHS numbers, national phone numbers with the +44 prefix, and UK
// postcodes.
func UKRules() Rules {
	return Rules{
		Email:      regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
		Phone:      regexp.MustCompile(`^(\+44|0)[\d\s\-().]{10,}$`),
		Postcode:   regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z0-9]? \d[A-Z]{2}$`),
		Identifier: regexp.MustCompile(`^\d{10}$`),
		DateLayouts: []string{
			"2006-01-02",
			"02/01/2006",
			"2/1/2006",
			"02-01-2006",
			"2 January 2006",
		},
		MaxAgeYears: 150,
		Now:         time.Now,
	}
}

func (r Rules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
