package build

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/goplus/recipe/internal/deps"
	"github.com/goplus/recipe/internal/generator"
	"github.com/goplus/recipe/internal/pkgcache"
	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

// recipeDigest identifies the declaration a package was built from. A
// changed recipe invalidates its cached builds.
func recipeDigest(r *recipe.Recipe) (string, error) {
	data, err := recipe.Marshal(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// dependencyDigest identifies the resolved dependencies a package is
// built against. Rebuilding a dependency rewrites its package info with a
// new build time and so changes the digest of every consumer.
func dependencyDigest(res *deps.Resolution) (string, error) {
	if len(res.Deps) == 0 {
		return "", nil
	}
	h := sha256.New()
	for _, d := range res.Deps {
		fmt.Fprintf(h, "%s\x00%s\x00", d.Ref, d.RootDir)
		data, err := os.ReadFile(filepath.Join(d.RootDir, pkgcache.InfoFile))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// cached returns the recorded build of matrix when it was built from the
// same recipe against the same dependencies and its package directory is
// still intact.
func (b *Builder) cached(ref module.Reference, idx *pkgcache.Index, matrix, digest, depsDigest string, gens recipe.GeneratorSet) (*Result, bool) {
	entry, ok := idx.Get(matrix)
	if !ok || entry.RecipeDigest != digest || entry.DepsDigest != depsDigest {
		return nil, false
	}
	if _, err := os.Stat(filepath.Join(entry.PackageDir, pkgcache.InfoFile)); err != nil {
		return nil, false
	}
	for _, a := range entry.Artifacts {
		if _, err := os.Stat(filepath.Join(entry.PackageDir, filepath.FromSlash(a.Path))); err != nil {
			return nil, false
		}
	}
	return resultFromEntry(ref, entry, gens, true), true
}

func resultFromEntry(ref module.Reference, entry *pkgcache.Entry, gens recipe.GeneratorSet, cached bool) *Result {
	res := &Result{
		Ref:        ref,
		Matrix:     entry.Matrix,
		PackageDir: entry.PackageDir,
		Artifacts:  slices.Clone(entry.Artifacts),
		Shared:     entry.Options.Shared,
		Cached:     cached,
	}
	res.Generated = generatedPaths(entry, gens)
	return res
}

// generatedPaths lists the generated artifacts of entry in the
// declaration order of gens.
func generatedPaths(entry *pkgcache.Entry, gens recipe.GeneratorSet) []string {
	paths := make([]string, 0, gens.Len())
	for _, name := range gens.All() {
		g, err := generator.Lookup(name)
		if err != nil {
			continue
		}
		if slices.ContainsFunc(entry.Artifacts, func(a pkgcache.Artifact) bool {
			return a.Kind == pkgcache.KindGenerated && a.Path == g.Filename()
		}) {
			paths = append(paths, filepath.Join(entry.PackageDir, g.Filename()))
		}
	}
	return paths
}
