package recipe

import (
	"iter"
	"slices"
)

// Known generator identifiers.
const (
	GenCMake        = "cmake"
	GenCompilerArgs = "compiler_args"
	GenTxt          = "txt"
)

var knownGenerators = []string{GenCMake, GenCompilerArgs, GenTxt}

// KnownGenerators returns the identifiers accepted in a GeneratorSet.
func KnownGenerators() []string {
	return slices.Clone(knownGenerators)
}

// GeneratorSet is an immutable ordered sequence of generator identifiers.
type GeneratorSet struct {
	names []string
}

// NewGeneratorSet validates names and freezes them in the given order.
func NewGeneratorSet(names ...string) (GeneratorSet, error) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !slices.Contains(knownGenerators, name) {
			return GeneratorSet{}, declErr("generators", name, ErrUnknownGenerator)
		}
		if seen[name] {
			return GeneratorSet{}, declErr("generators", name, ErrDuplicateGenerator)
		}
		seen[name] = true
	}
	return GeneratorSet{names: slices.Clone(names)}, nil
}

func (s GeneratorSet) Len() int { return len(s.names) }

func (s GeneratorSet) At(i int) string { return s.names[i] }

func (s GeneratorSet) Contains(name string) bool {
	return slices.Contains(s.names, name)
}

// All iterates over the generator identifiers in declaration order.
func (s GeneratorSet) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, name := range s.names {
			if !yield(i, name) {
				return
			}
		}
	}
}

// Names returns a copy of the generator identifiers.
func (s GeneratorSet) Names() []string {
	return slices.Clone(s.names)
}
