package providers

import "strings"

// Known provider names.
const (
	NameAIHub    = "aihub"
	NameDeepSeek = "deepseek"
	NameMoonshot = "moonshot"
	NameZhipu    = "zhipu"
)

type providerEntry struct {
	name    string
	baseURL string
	envKey  string
}

var knownProviders = []providerEntry{
	{NameAIHub, "https://aihubmix.com/v1", "AIHUB_API_KEY"},
	{NameDeepSeek, "https://api.deepseek.com/v1", "DEEPSEEK_API_KEY"},
	{NameMoonshot, "https://api.moonshot.cn/v1", "MOONSHOT_API_KEY"},
	{NameZhipu, "https://open.bigmodel.cn/api/paas/v3", "ZHIPU_API_KEY"},
}

// EnvKey returns the environment variable holding the default API key for a
// known provider, or "" for an unknown name.
func EnvKey(name string) string {
	for _, e := range knownProviders {
		if e.name == name {
			return e.envKey
		}
	}
	return ""
}

// DefaultProviders builds the static provider table, reading each default
// API key through getenv. A missing variable yields an empty key; requests
// made with it fail with an authentication error at request time.
func DefaultProviders(getenv func(string) string) []ProviderConfig {
	out := make([]ProviderConfig, 0, len(knownProviders))
	for _, e := range knownProviders {
		out = append(out, ProviderConfig{
			Name:    e.name,
			BaseURL: e.baseURL,
			APIKey:  getenv(e.envKey),
		})
	}
	return out
}

// ApplyOverrides returns a copy of cfgs with base URLs replaced for the
// providers named in overrides. Trailing slashes are trimmed. Names not in
// cfgs are ignored.
func ApplyOverrides(cfgs []ProviderConfig, overrides map[string]string) []ProviderConfig {
	out := make([]ProviderConfig, len(cfgs))
	copy(out, cfgs)
	for i := range out {
		if u, ok := overrides[out[i].Name]; ok && u != "" {
			out[i].BaseURL = u
		}
		out[i].BaseURL = strings.TrimRight(out[i].BaseURL, "/")
	}
	return out
}

// Registry is a fixed, ordered collection of providers looked up by name.
// It is safe for concurrent use because it is never mutated after
// construction.
type Registry struct {
	ordered []ProviderConfig
	byName  map[string]int
}

// NewRegistry creates a registry holding cfgs in the given order. A later
// entry with a duplicate name replaces the earlier one in place.
func NewRegistry(cfgs ...ProviderConfig) *Registry {
	r := &Registry{byName: make(map[string]int, len(cfgs))}
	for _, c := range cfgs {
		if i, ok := r.byName[c.Name]; ok {
			r.ordered[i] = c
			continue
		}
		r.byName[c.Name] = len(r.ordered)
		r.ordered = append(r.ordered, c)
	}
	return r
}

// Get returns a provider by name, or *UnknownProviderError.
func (r *Registry) Get(name string) (ProviderConfig, error) {
	i, ok := r.byName[name]
	if !ok {
		return ProviderConfig{}, &UnknownProviderError{Name: name}
	}
	return r.ordered[i], nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// List returns all providers in insertion order.
func (r *Registry) List() []ProviderConfig {
	out := make([]ProviderConfig, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns all provider names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, p := range r.ordered {
		names[i] = p.Name
	}
	return names
}
