package llm

import (
	"fmt"
	"strings"
)

// NewClient builds a TextGenerator for the configured provider.
// Supported providers: "openai", "anthropic".
func NewClient(provider, apiKey, model, baseURL string) (TextGenerator, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAIClient(apiKey, model, baseURL), nil
	case "anthropic":
		return NewAnthropicClient(apiKey, model, baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
