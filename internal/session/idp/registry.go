package idp

import "fmt"

// Registry maps platform names to providers.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Lookup returns the provider for platform.
func (r *Registry) Lookup(platform string) (Provider, error) {
	p, ok := r.providers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, platform)
	}
	return p, nil
}

// Platforms lists the registered platform names.
func (r *Registry) Platforms() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
