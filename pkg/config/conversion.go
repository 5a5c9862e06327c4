package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/polisai/oxy/pkg/object"
)

// ScopeVars converts the configured vars into objects for an evaluator scope.
// With wrap set every top-level value is bound behind a proxy so that scripts
// can rebind it in place.
func (c *Config) ScopeVars(wrap func(object.Object) object.Object) (map[string]object.Object, error) {
	out := make(map[string]object.Object, len(c.Vars))
	for _, name := range slices.Sorted(maps.Keys(c.Vars)) {
		o, err := object.FromNative(c.Vars[name])
		if err != nil {
			return nil, fmt.Errorf("vars.%s: %w", name, err)
		}
		if wrap != nil {
			o = wrap(o)
		}
		out[name] = o
	}
	return out, nil
}
