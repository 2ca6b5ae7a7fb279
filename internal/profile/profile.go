// Package profile resolves the build settings a recipe is built with.
// A profile is always passed explicitly to the builder; nothing reads the
// host environment behind the caller's back.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goplus/recipe/recipe"
)

// DefaultName is the profile used when none is given.
const DefaultName = "default"

// Profile is a named set of settings plus environment variables forwarded
// to the build tools (CC, CXX, CFLAGS, ...).
type Profile struct {
	Name     string            `yaml:"-"`
	Settings recipe.Settings   `yaml:"settings"`
	Env      map[string]string `yaml:"env,omitempty"`

	// Toolchain is a CMake toolchain file used for cross builds. Relative
	// paths are resolved against the profile file.
	Toolchain string `yaml:"toolchain,omitempty"`
}

// Parse decodes a profile from YAML.
func Parse(name string, data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("profile %s: %w", name, err)
	}
	p.Name = name
	return &p, nil
}

// Load reads the profile stored at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	if p.Toolchain != "" && !filepath.IsAbs(p.Toolchain) {
		p.Toolchain = filepath.Join(filepath.Dir(path), p.Toolchain)
	}
	return p, nil
}

// Save writes p to path as YAML.
func Save(p *Profile, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve finds a profile by path or by name inside dir. The default
// profile falls back to host detection when no file exists for it.
func Resolve(nameOrPath, dir string) (*Profile, error) {
	if nameOrPath == "" {
		nameOrPath = DefaultName
	}
	if _, err := os.Stat(nameOrPath); err == nil && strings.ContainsAny(nameOrPath, `/\.`) {
		return Load(nameOrPath)
	}
	p, err := Load(filepath.Join(dir, nameOrPath+".yaml"))
	if err == nil {
		return p, nil
	}
	if errors.Is(err, os.ErrNotExist) && nameOrPath == DefaultName {
		return Detect()
	}
	return nil, fmt.Errorf("profile %s: %w", nameOrPath, err)
}

// Merge returns p with the non-empty settings of override applied on top.
func (p *Profile) Merge(override recipe.Settings) *Profile {
	out := *p
	out.Env = make(map[string]string, len(p.Env))
	for k, v := range p.Env {
		out.Env[k] = v
	}
	if override.OS != "" {
		out.Settings.OS = override.OS
	}
	if override.Compiler != "" {
		out.Settings.Compiler = override.Compiler
	}
	if override.BuildType != "" {
		out.Settings.BuildType = override.BuildType
	}
	if override.Arch != "" {
		out.Settings.Arch = override.Arch
	}
	return &out
}

// ParseSetting applies an "axis=value" assignment to s.
func ParseSetting(s *recipe.Settings, kv string) error {
	axis, val, ok := strings.Cut(kv, "=")
	if !ok || val == "" {
		return fmt.Errorf("invalid setting %q: want axis=value", kv)
	}
	switch axis {
	case recipe.AxisOS:
		s.OS = val
	case recipe.AxisCompiler:
		s.Compiler = val
	case recipe.AxisBuildType:
		s.BuildType = val
	case recipe.AxisArch:
		s.Arch = val
	default:
		return fmt.Errorf("invalid setting %q: %w", kv, recipe.ErrUnknownSetting)
	}
	return nil
}
