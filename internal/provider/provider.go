package provider

import "fmt"

// ID identifies an LLM provider. The set of providers is closed; code that
// passes an unknown ID has a bug, so Lookup panics rather than returning an
// error.
type ID string

const (
	OpenAI    ID = "openai"
	Anthropic ID = "anthropic"
	Google    ID = "google"
)

// Config describes a provider's identity and connection defaults. Configs
// are static and never mutated at runtime.
type Config struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	APIBaseURL   string `json:"api_base_url"`
	DefaultModel string `json:"default_model"`
	// APIKeyHeader is the request header carrying the API key. Empty for
	// providers that take the key as a URL query parameter instead.
	APIKeyHeader string `json:"api_key_header"`
}

var catalog = map[ID]Config{
	OpenAI: {
		ID:           OpenAI,
		Name:         "OpenAI",
		APIBaseURL:   "https://api.openai.com/v1",
		DefaultModel: "gpt-4o",
		APIKeyHeader: "Authorization",
	},
	Anthropic: {
		ID:           Anthropic,
		Name:         "Anthropic",
		APIBaseURL:   "https://api.anthropic.com/v1",
		DefaultModel: "claude-sonnet-4-5-20250929",
		APIKeyHeader: "x-api-key",
	},
	Google: {
		ID:           Google,
		Name:         "Google Gemini",
		APIBaseURL:   "https://generativelanguage.googleapis.com/v1beta/models",
		DefaultModel: "gemini-2.0-flash",
		APIKeyHeader: "",
	},
}

// order fixes the listing order for All.
var order = []ID{OpenAI, Anthropic, Google}

// Valid reports whether id names a known provider.
func Valid(id ID) bool {
	_, ok := catalog[id]
	return ok
}

// Lookup returns the static config for the given provider id.
func Lookup(id ID) Config {
	cfg, ok := catalog[id]
	if !ok {
		panic(fmt.Sprintf("provider: unknown id %q", id))
	}
	return cfg
}

// All returns every provider config in stable order.
func All() []Config {
	configs := make([]Config, 0, len(order))
	for _, id := range order {
		configs = append(configs, catalog[id])
	}
	return configs
}
