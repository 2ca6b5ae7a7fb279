package deps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goplus/recipe/internal/pkgcache"
	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

// FileEntry is one dependency in a resolution file.
type FileEntry struct {
	Ref              string `yaml:"ref"`
	RootDir          string `yaml:"root_dir"`
	pkgcache.CppInfo `yaml:",inline"`
}

// File is a resolution computed by a host package manager. Both YAML and
// JSON encodings are accepted.
//
//	dependencies:
//	  - ref: zlib/1.2.11@conan/stable
//	    root_dir: /opt/zlib
//	    include_dirs: [include]
//	    lib_dirs: [lib]
//	    libs: [z]
type File struct {
	Dependencies []FileEntry `yaml:"dependencies"`
}

// FileResolver resolves dependencies from a resolution file.
type FileResolver struct {
	entries map[string]FileEntry
	dir     string
}

// LoadFile reads a resolution file. Relative root dirs are taken relative
// to the file.
func LoadFile(path string) (*FileResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return ParseFile(filepath.Dir(abs), data)
}

// ParseFile decodes a resolution file whose relative paths are based at dir.
func ParseFile(dir string, data []byte) (*FileResolver, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing resolution file: %w", err)
	}
	r := &FileResolver{entries: make(map[string]FileEntry, len(f.Dependencies)), dir: dir}
	for _, e := range f.Dependencies {
		ref, err := module.ParseReference(e.Ref)
		if err != nil {
			return nil, fmt.Errorf("parsing resolution file: %w", err)
		}
		if _, dup := r.entries[ref.Name]; dup {
			return nil, fmt.Errorf("parsing resolution file: %s listed twice", ref.Name)
		}
		r.entries[ref.Name] = e
	}
	return r, nil
}

// Resolve returns the entries for requires in declaration order. Every
// reference must be present with the same version, user and channel.
func (r *FileResolver) Resolve(ctx context.Context, requires recipe.DependencySet, _ recipe.Settings) (*Resolution, error) {
	res := &Resolution{Deps: make([]Dependency, 0, requires.Len())}
	for _, want := range requires.All() {
		e, ok := r.entries[want.Name]
		if !ok {
			return nil, notFound(want, "not listed in resolution file")
		}
		got, _ := module.ParseReference(e.Ref)
		if module.CompareVersion(got.Version, want.Version) != 0 || got.User != want.User || got.Channel != want.Channel {
			return nil, fmt.Errorf("%s: %w: resolution file has %s", want, ErrVersionMismatch, got)
		}
		root := e.RootDir
		if !filepath.IsAbs(root) {
			root = filepath.Join(r.dir, root)
		}
		res.Deps = append(res.Deps, NewDependency(want, root, e.CppInfo))
	}
	return res, nil
}
