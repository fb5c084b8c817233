package models

// Provider identifies a pluggable model-backend vendor. Workers are resolved
// through a typed registry rather than by raw strings at call time.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// PrimaryProvider plans and verifies; a missing credential for it is fatal.
const PrimaryProvider = ProviderOpenAI

// Providers lists the supported backends.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// ParseProvider maps a wire string to a Provider, false when unknown.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return Provider(s), true
	}
	return "", false
}

// Credentials maps a provider to one API key, merged once per request from
// caller-supplied values and environment fallbacks, then passed down
// read-only.
type Credentials map[Provider]string

// Has reports whether a non-empty credential exists for p.
func (c Credentials) Has(p Provider) bool {
	return c[p] != ""
}
