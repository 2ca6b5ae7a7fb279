package buildsys

import (
	"runtime"
	"sort"
	"strings"
)

// Environ holds the variables a build system passes to its child
// processes on top of the inherited environment. The process environment
// itself is never modified.
//
// Set replaces a variable. Prepend and AppendFlag extend it: the recorded
// values are joined with the inherited value when the environment is
// merged, so search paths the caller already exports are kept.
type Environ struct {
	set     map[string]string
	prepend map[string][]string
	flags   map[string][]string
}

// NewEnviron returns an Environ that sets the given variables.
func NewEnviron(vars map[string]string) *Environ {
	e := &Environ{}
	for k, v := range vars {
		e.Set(k, v)
	}
	return e
}

// Set sets key to value, replacing the inherited value.
func (e *Environ) Set(key, value string) {
	if e.set == nil {
		e.set = make(map[string]string)
	}
	e.set[key] = value
}

// Prepend prepends a value to a PATH-style variable using the platform separator.
func (e *Environ) Prepend(key, value string) {
	if e.prepend == nil {
		e.prepend = make(map[string][]string)
	}
	e.prepend[key] = append([]string{value}, e.prepend[key]...)
}

// AppendFlag appends a space-separated flag to a variable.
func (e *Environ) AppendFlag(key, flag string) {
	if e.flags == nil {
		e.flags = make(map[string][]string)
	}
	e.flags[key] = append(e.flags[key], flag)
}

// Get returns the value key takes when merged over an environment that
// does not define it.
func (e *Environ) Get(key string) (string, bool) {
	return e.value(key, "", false)
}

func (e *Environ) value(key, inherited string, ok bool) (string, bool) {
	v, set := e.set[key]
	if !set {
		v = inherited
	}
	pre, flags := e.prepend[key], e.flags[key]
	if !set && !ok && len(pre) == 0 && len(flags) == 0 {
		return "", false
	}
	if len(pre) > 0 {
		parts := pre
		if v != "" {
			parts = append(parts[:len(parts):len(parts)], v)
		}
		v = strings.Join(parts, listSeparator())
	}
	if len(flags) > 0 {
		v = strings.TrimSpace(v + " " + strings.Join(flags, " "))
	}
	return v, true
}

// Merge returns base with the variables of e applied, sorted by key.
func (e *Environ) Merge(base []string) []string {
	inherited := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			inherited[k] = v
		}
	}
	keys := make(map[string]bool, len(inherited))
	for k := range inherited {
		keys[k] = true
	}
	for k := range e.set {
		keys[k] = true
	}
	for k := range e.prepend {
		keys[k] = true
	}
	for k := range e.flags {
		keys[k] = true
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	out := make([]string, 0, len(sorted))
	for _, k := range sorted {
		cur, ok := inherited[k]
		if v, ok := e.value(k, cur, ok); ok {
			out = append(out, k+"="+v)
		}
	}
	return out
}

func listSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}
