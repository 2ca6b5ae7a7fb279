// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pkgcache manages the local package cache: where installed
// packages live, the build index of every reference and the package info
// file consumers resolve dependencies from.
package pkgcache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

// Cache directory layout:
//
//	root/
//	  <name>/<version>/<user>/<channel>/   # reference dir
//	    .cache.json                        # build index: matrix → Entry
//	    .lock
//	    <matrix>/                          # installed package
//	      pkginfo.json
//	      include/ lib/ bin/ ...
const cacheFile = ".cache.json"

// Artifact kinds.
const (
	KindStatic     = "static"
	KindShared     = "shared"
	KindExecutable = "executable"
	KindGenerated  = "generated"
)

// Artifact is one file produced by a build, relative to its package dir.
type Artifact struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Entry contains metadata about a single successful build.
type Entry struct {
	Matrix       string          `json:"matrix"`
	Settings     recipe.Settings `json:"settings"`
	Options      recipe.Options  `json:"options"`
	PackageDir   string          `json:"package_dir"`
	Artifacts    []Artifact      `json:"artifacts"`
	RecipeDigest string          `json:"recipe_digest"`
	DepsDigest   string          `json:"deps_digest,omitempty"`
	BuildTime    time.Time       `json:"build_time"`
}

// Index maps matrix keys to their build entries.
type Index struct {
	Entries map[string]*Entry `json:"cache"`
}

func (x *Index) Get(matrix string) (*Entry, bool) {
	entry, ok := x.Entries[matrix]
	return entry, ok
}

func (x *Index) Set(entry *Entry) {
	if x.Entries == nil {
		x.Entries = make(map[string]*Entry)
	}
	x.Entries[entry.Matrix] = entry
}

// Keys returns the matrix keys of x in sorted order.
func (x *Index) Keys() []string {
	keys := make([]string, 0, len(x.Entries))
	for k := range x.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Cache is a package cache rooted at a directory.
type Cache struct {
	root string
}

// New returns the cache rooted at root.
func New(root string) *Cache {
	return &Cache{root: root}
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// RefDir returns the reference-level directory: root/<name>/<version>/<user>/<channel>.
func (c *Cache) RefDir(ref module.Reference) (string, error) {
	escaped, err := module.EscapePath(ref)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.root, escaped), nil
}

// PackageDir returns the install directory of ref built for matrix.
func (c *Cache) PackageDir(ref module.Reference, matrix string) (string, error) {
	dir, err := c.RefDir(ref)
	if err != nil {
		return "", err
	}
	name, err := filepath.Localize(matrix)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// LoadIndex reads the build index of ref. A missing index is empty.
func (c *Cache) LoadIndex(ref module.Reference) (*Index, error) {
	dir, err := c.RefDir(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, cacheFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Index{}, nil
		}
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// SaveIndex writes the build index of ref.
func (c *Cache) SaveIndex(ref module.Reference, idx *Index) error {
	dir, err := c.RefDir(ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFile), data, 0o644)
}
