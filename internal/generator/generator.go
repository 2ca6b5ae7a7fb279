// Package generator emits the files downstream build tools consume to
// find the resolved dependencies: a CMake include, a compiler argument
// list and a plain key/value manifest.
package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goplus/recipe/internal/deps"
	"github.com/goplus/recipe/recipe"
)

// Input is everything a generator may render.
type Input struct {
	Recipe   *recipe.Recipe
	Settings recipe.Settings
	Options  recipe.Options
	Deps     *deps.Resolution
}

// Generator renders one output format.
type Generator interface {
	// Name returns the identifier used in a recipe's generators list.
	Name() string

	// Filename returns the base name of the generated file.
	Filename() string

	// Generate renders the file content.
	Generate(in *Input) ([]byte, error)
}

var registry = map[string]Generator{
	recipe.GenCMake:        cmakeGen{},
	recipe.GenCompilerArgs: compilerArgsGen{},
	recipe.GenTxt:          txtGen{},
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Generator, error) {
	g, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", recipe.ErrUnknownGenerator, name)
	}
	return g, nil
}

// Write runs every generator of set, in order, and writes the files into
// dir. It returns the written paths in the same order.
func Write(dir string, set recipe.GeneratorSet, in *Input) ([]string, error) {
	if in.Deps == nil {
		in.Deps = &deps.Resolution{}
	}
	paths := make([]string, 0, set.Len())
	for _, name := range set.All() {
		g, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		content, err := g.Generate(in)
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", name, err)
		}
		path := filepath.Join(dir, g.Filename())
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func header(in *Input, comment string) string {
	meta := in.Recipe.Metadata()
	return fmt.Sprintf("%s Generated for %s/%s. Do not edit.\n", comment, meta.Name, meta.Version)
}
