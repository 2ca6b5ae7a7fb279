package recipe

import (
	"sort"
	"strings"
)

// Matrix describes the settings and options a package is built for.
// A concrete build has exactly one value per key.
type Matrix struct {
	Require map[string]string
	Options map[string]string
}

// NewMatrix returns the concrete matrix for the declared axes of a recipe.
func NewMatrix(axes []string, s Settings, o Options) Matrix {
	m := Matrix{
		Require: make(map[string]string, len(axes)),
		Options: map[string]string{OptShared: o.LinkKind()},
	}
	for _, axis := range axes {
		m.Require[axis] = s.Get(axis)
	}
	return m
}

// String returns the matrix key in a form usable as a directory name.
// Keys are sorted alphabetically; require values are joined with "-" and
// then combined with the option values using "+". A "-" inside a value is
// written as "~", which setting values may not contain.
func (m Matrix) String() string {
	join := func(kvs map[string]string) string {
		keys := make([]string, 0, len(kvs))
		for k := range kvs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		vals := make([]string, len(keys))
		for i, k := range keys {
			vals[i] = strings.ReplaceAll(kvs[k], "-", "~")
		}
		return strings.Join(vals, "-")
	}

	require, options := join(m.Require), join(m.Options)
	switch {
	case require == "" && options == "":
		return "default"
	case require == "":
		return options
	case options == "":
		return require
	}
	return require + "+" + options
}
