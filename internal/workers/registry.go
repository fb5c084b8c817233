package workers

import (
	"context"
	"fmt"

	"github.com/kkk9131/new-gate-sub000/pkg/models"
)

// Factory builds a fresh worker for one credential. Workers are constructed
// per request; any connection reuse below that is the vendor client's concern.
type Factory func(ctx context.Context, credential, model string) (Worker, error)

// Registry owns the provider→constructor table. It is built once at process
// start and handed into the orchestrator explicitly; there is no global
// instance.
type Registry struct {
	factories map[models.Provider]Factory
	models    map[models.Provider]string
}

// NewRegistry wires the built-in vendor adapters with their configured model
// names.
func NewRegistry(modelNames map[models.Provider]string) *Registry {
	r := &Registry{
		factories: map[models.Provider]Factory{},
		models:    map[models.Provider]string{},
	}
	r.Register(models.ProviderOpenAI, modelNames[models.ProviderOpenAI], newOpenAI)
	r.Register(models.ProviderAnthropic, modelNames[models.ProviderAnthropic], newAnthropic)
	r.Register(models.ProviderGemini, modelNames[models.ProviderGemini], newGemini)
	return r
}

// Register replaces the factory for a provider. Tests use this to install
// fakes.
func (r *Registry) Register(p models.Provider, model string, f Factory) {
	r.factories[p] = f
	r.models[p] = model
}

// Resolve constructs a worker for the provider using the request credentials.
// A missing credential is an error raised here, at call time.
func (r *Registry) Resolve(ctx context.Context, p models.Provider, creds models.Credentials) (Worker, error) {
	f, ok := r.factories[p]
	if !ok {
		return nil, fmt.Errorf("unknown worker provider %q", p)
	}
	if !creds.Has(p) {
		return nil, fmt.Errorf("no credential for provider %q", p)
	}
	return f(ctx, creds[p], r.models[p])
}

// Substitute picks the provider actually used for an assignment: the
// preferred one when its credential is available, else the primary. An
// error names the provider that could not be served.
func (r *Registry) Substitute(preferred models.Provider, creds models.Credentials) (models.Provider, error) {
	if creds.Has(preferred) {
		return preferred, nil
	}
	if creds.Has(models.PrimaryProvider) {
		return models.PrimaryProvider, nil
	}
	return "", fmt.Errorf("no credential for provider %q and no %q fallback", preferred, models.PrimaryProvider)
}
