package provider

import (
	"strings"

	"sermon-subscription-billing/internal/domain/ports/adapter"
)

// Registry dispatches raw payloads to the normalizer for their provider
// tag. New providers are added by registering a new variant, never by
// branching inside an existing normalizer.
type Registry struct {
	bySource map[string]adapter.PayloadNormalizer
}

func NewRegistry(normalizers ...adapter.PayloadNormalizer) *Registry {
	r := &Registry{bySource: make(map[string]adapter.PayloadNormalizer, len(normalizers))}
	for _, n := range normalizers {
		r.bySource[strings.ToLower(n.Source())] = n
	}
	return r
}

// ForSource returns the normalizer registered for the provider tag.
func (r *Registry) ForSource(source string) (adapter.PayloadNormalizer, bool) {
	n, ok := r.bySource[strings.ToLower(source)]
	return n, ok
}

// Sources lists the registered provider tags.
func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.bySource))
	for s := range r.bySource {
		out = append(out, s)
	}
	return out
}
