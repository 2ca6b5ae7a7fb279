package recipe

import (
	"iter"
	"slices"

	"github.com/goplus/recipe/pkgs/mod/module"
)

// DependencySet is an immutable ordered sequence of pinned references.
// The declaration order is kept verbatim so generated files are
// reproducible.
type DependencySet struct {
	refs []module.Reference
}

// NewDependencySet validates refs and freezes them in the given order.
// Two references with the same name are rejected.
func NewDependencySet(refs ...module.Reference) (DependencySet, error) {
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if err := ref.Check(); err != nil {
			return DependencySet{}, declErr("requires", ref.String(), err)
		}
		if seen[ref.Name] {
			return DependencySet{}, declErr("requires", ref.Name, ErrDuplicateDependency)
		}
		seen[ref.Name] = true
	}
	return DependencySet{refs: slices.Clone(refs)}, nil
}

// Len returns the number of dependencies.
func (s DependencySet) Len() int { return len(s.refs) }

// At returns the i-th dependency in declaration order.
func (s DependencySet) At(i int) module.Reference { return s.refs[i] }

// All iterates over the dependencies in declaration order.
func (s DependencySet) All() iter.Seq2[int, module.Reference] {
	return func(yield func(int, module.Reference) bool) {
		for i, ref := range s.refs {
			if !yield(i, ref) {
				return
			}
		}
	}
}

// Refs returns a copy of the dependencies.
func (s DependencySet) Refs() []module.Reference {
	return slices.Clone(s.refs)
}

// Strings returns the canonical string form of every dependency.
func (s DependencySet) Strings() []string {
	out := make([]string, len(s.refs))
	for i, ref := range s.refs {
		out[i] = ref.String()
	}
	return out
}
