// Package deps turns the pinned references of a recipe into the include
// and link information the build needs. Resolution failures are fatal:
// nothing is retried or fetched.
package deps

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/goplus/recipe/internal/pkgcache"
	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

var (
	// ErrNotFound is returned when a required package is not available.
	ErrNotFound = errors.New("dependency not found")

	// ErrVersionMismatch is returned when the resolved version differs
	// from the pinned one.
	ErrVersionMismatch = errors.New("dependency version mismatch")
)

// Resolver resolves a dependency set for a set of settings.
type Resolver interface {
	Resolve(ctx context.Context, requires recipe.DependencySet, settings recipe.Settings) (*Resolution, error)
}

// Dependency is a resolved dependency with absolute directories.
type Dependency struct {
	Ref     module.Reference
	RootDir string
	pkgcache.CppInfo
}

// Resolution is the ordered result of resolving a DependencySet.
// Deps follow the declaration order of the set.
type Resolution struct {
	Deps []Dependency
}

// NewDependency makes the directories of info absolute under root.
func NewDependency(ref module.Reference, root string, info pkgcache.CppInfo) Dependency {
	abs := func(dirs []string) []string {
		out := make([]string, len(dirs))
		for i, d := range dirs {
			if filepath.IsAbs(d) {
				out[i] = d
			} else {
				out[i] = filepath.Join(root, d)
			}
		}
		return out
	}
	info.IncludeDirs = abs(info.IncludeDirs)
	info.LibDirs = abs(info.LibDirs)
	info.BinDirs = abs(info.BinDirs)
	return Dependency{Ref: ref, RootDir: root, CppInfo: info}
}

// Lookup returns the dependency named name.
func (r *Resolution) Lookup(name string) (Dependency, bool) {
	for _, d := range r.Deps {
		if d.Ref.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// Aggregated returns the union of all dependencies' information, keeping
// the first occurrence of every entry in declaration order.
func (r *Resolution) Aggregated() pkgcache.CppInfo {
	var out pkgcache.CppInfo
	for _, d := range r.Deps {
		out.IncludeDirs = appendUnique(out.IncludeDirs, d.IncludeDirs...)
		out.LibDirs = appendUnique(out.LibDirs, d.LibDirs...)
		out.BinDirs = appendUnique(out.BinDirs, d.BinDirs...)
		out.Libs = appendUnique(out.Libs, d.Libs...)
		out.Defines = appendUnique(out.Defines, d.Defines...)
		out.CFlags = appendUnique(out.CFlags, d.CFlags...)
		out.CXXFlags = appendUnique(out.CXXFlags, d.CXXFlags...)
		out.LinkFlags = appendUnique(out.LinkFlags, d.LinkFlags...)
	}
	return out
}

// RootDirs returns the root of every dependency in declaration order.
func (r *Resolution) RootDirs() []string {
	out := make([]string, 0, len(r.Deps))
	for _, d := range r.Deps {
		out = append(out, d.RootDir)
	}
	return out
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

func notFound(ref module.Reference, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", ref, ErrNotFound, fmt.Sprintf(format, args...))
}
