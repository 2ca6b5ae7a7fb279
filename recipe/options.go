package recipe

import (
	"fmt"
	"strconv"
	"strings"
)

// OptShared is the only option a recipe can declare.
const OptShared = "shared"

// Options holds the per-invocation option values.
type Options struct {
	Shared bool `yaml:"shared" json:"shared"`
}

// LinkKind names the kind of library produced with o.
func (o Options) LinkKind() string {
	if o.Shared {
		return "shared"
	}
	return "static"
}

// ResolveOptions starts from the recipe defaults and applies overrides of
// the form "name=value" in order. Values outside the declared domain are
// rejected.
func (r *Recipe) ResolveOptions(overrides ...string) (Options, error) {
	opts := r.defaultOptions
	for _, kv := range overrides {
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			return Options{}, fmt.Errorf("%w: %q: want name=value", ErrInvalidOption, kv)
		}
		name = strings.TrimSpace(name)
		domain, declared := r.options[name]
		if !declared {
			return Options{}, fmt.Errorf("%w: %s is not declared by %s", ErrInvalidOption, name, r.meta.Name)
		}
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return Options{}, fmt.Errorf("%w: %s=%s", ErrInvalidOption, name, val)
		}
		if !inDomain(domain, b) {
			return Options{}, fmt.Errorf("%w: %s=%t not in %v", ErrInvalidOption, name, b, domain)
		}
		opts.Shared = b
	}
	return opts, nil
}

func inDomain(domain []bool, v bool) bool {
	for _, d := range domain {
		if d == v {
			return true
		}
	}
	return false
}
