// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deps

import (
	"context"
	"fmt"

	"github.com/goplus/recipe/internal/pkgcache"
	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

// CacheResolver resolves dependencies from packages previously installed
// into the local package cache.
type CacheResolver struct {
	Cache *pkgcache.Cache

	// PreferShared selects shared builds over static ones when both exist.
	PreferShared bool
}

// Resolve picks, for every reference, an installed build whose recorded
// settings agree with settings.
func (c *CacheResolver) Resolve(ctx context.Context, requires recipe.DependencySet, settings recipe.Settings) (*Resolution, error) {
	res := &Resolution{Deps: make([]Dependency, 0, requires.Len())}
	for _, ref := range requires.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dep, err := c.resolveOne(ref, settings)
		if err != nil {
			return nil, err
		}
		res.Deps = append(res.Deps, dep)
	}
	return res, nil
}

func (c *CacheResolver) resolveOne(ref module.Reference, settings recipe.Settings) (Dependency, error) {
	idx, err := c.Cache.LoadIndex(ref)
	if err != nil {
		return Dependency{}, fmt.Errorf("%s: reading build index: %w", ref, err)
	}
	var chosen *pkgcache.Entry
	for _, key := range idx.Keys() {
		entry, _ := idx.Get(key)
		if !compatible(entry.Settings, settings) {
			continue
		}
		if chosen == nil || (entry.Options.Shared == c.PreferShared && chosen.Options.Shared != c.PreferShared) {
			chosen = entry
		}
	}
	if chosen == nil {
		return Dependency{}, notFound(ref, "no build in %s matches %+v", c.Cache.Root(), settings)
	}
	info, err := pkgcache.ReadInfo(chosen.PackageDir)
	if err != nil {
		return Dependency{}, notFound(ref, "%v", err)
	}
	return NewDependency(ref, chosen.PackageDir, info.Cpp), nil
}

// compatible reports whether every axis recorded for a build matches the
// requested settings. Axes a package did not declare are ignored.
func compatible(built, want recipe.Settings) bool {
	for _, axis := range []string{recipe.AxisOS, recipe.AxisCompiler, recipe.AxisBuildType, recipe.AxisArch} {
		if v := built.Get(axis); v != "" && v != want.Get(axis) {
			return false
		}
	}
	return true
}
