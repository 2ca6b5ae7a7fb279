package pkgcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

// InfoFile is written into every installed package.
const InfoFile = "pkginfo.json"

// CppInfo tells consumers how to compile and link against a package.
// Directories are relative to the package root.
type CppInfo struct {
	IncludeDirs []string `json:"include_dirs,omitempty" yaml:"include_dirs,omitempty"`
	LibDirs     []string `json:"lib_dirs,omitempty" yaml:"lib_dirs,omitempty"`
	BinDirs     []string `json:"bin_dirs,omitempty" yaml:"bin_dirs,omitempty"`
	Libs        []string `json:"libs,omitempty" yaml:"libs,omitempty"`
	Defines     []string `json:"defines,omitempty" yaml:"defines,omitempty"`
	CFlags      []string `json:"cflags,omitempty" yaml:"cflags,omitempty"`
	CXXFlags    []string `json:"cxxflags,omitempty" yaml:"cxxflags,omitempty"`
	LinkFlags   []string `json:"linkflags,omitempty" yaml:"linkflags,omitempty"`
}

// Info describes an installed package.
type Info struct {
	Ref      module.Reference `json:"ref"`
	Settings recipe.Settings  `json:"settings"`
	Options  recipe.Options   `json:"options"`
	Cpp      CppInfo          `json:"cpp_info"`

	// BuildTime changes on every rebuild so consumers can tell a rebuilt
	// package from the one they were built against.
	BuildTime time.Time `json:"build_time"`
}

// ReadInfo reads the package info file of the package installed in dir.
func ReadInfo(dir string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(dir, InfoFile))
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// WriteInfo writes info into dir.
func WriteInfo(dir string, info *Info) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, InfoFile), data, 0o644)
}
