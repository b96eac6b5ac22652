// Package llm abstracts the external text-generation service used by the
// data-quality pipeline for fuzzy duplicate detection and correction
// proposals. The service accepts a natural-language instruction with an
// embedded data payload and returns free-form text expected to contain
// one structured JSON block.
package llm

import "context"

// TextGenerator is the request/response contract with the external
// text-generation service. Implementations must honour the context
// deadline; callers treat every error as a signal to fall back to
// deterministic behaviour.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
