// Package recipe defines the declarative package descriptor: identity,
// setting axes, options, pinned dependencies and output generators.
package recipe

import (
	"slices"

	"github.com/goplus/recipe/pkgs/mod/module"
)

// Build systems a recipe can delegate to.
const (
	BuildSystemCMake     = "cmake"
	BuildSystemAutotools = "autotools"
)

// Metadata is the package identity. It is never mutated after Declare.
type Metadata struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	License     string `yaml:"license,omitempty" json:"license,omitempty"`
	URL         string `yaml:"url,omitempty" json:"url,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Declaration is the raw, unvalidated form of a recipe as written in a
// recipe file.
type Declaration struct {
	Metadata `yaml:",inline"`

	Settings       []string          `yaml:"settings,omitempty"`
	Options        map[string][]bool `yaml:"options,omitempty"`
	DefaultOptions map[string]bool   `yaml:"default_options,omitempty"`
	ExportsSources []string          `yaml:"exports_sources,omitempty"`
	SourceSubdir   string            `yaml:"source_subdir,omitempty"`
	BuildSystem    string            `yaml:"build_system,omitempty"`
	Generators     []string          `yaml:"generators,omitempty"`
	Requires       []string          `yaml:"requires,omitempty"`
}

// Recipe is a validated declaration. Only the options chosen for a build
// vary per invocation; see ResolveOptions.
type Recipe struct {
	meta           Metadata
	axes           []string
	options        map[string][]bool
	defaultOptions Options
	exports        []string
	sourceSubdir   string
	buildSystem    string
	requires       DependencySet
	generators     GeneratorSet

	// Dir is the directory the recipe was loaded from, if any.
	Dir string
}

// Declare validates decl and returns the frozen recipe. It has no side
// effects; every failure is a *DeclarationError.
func Declare(decl Declaration) (*Recipe, error) {
	if decl.Name == "" {
		return nil, declErr("name", "", ErrMissingField)
	}
	if err := (module.Reference{Name: decl.Name, Version: decl.Version,
		User: module.DefaultUser, Channel: module.DefaultChannel}).Check(); err != nil {
		field := "name"
		if decl.Version == "" || module.CheckVersion(decl.Version) != nil {
			field = "version"
		}
		return nil, declErr(field, decl.Name+"/"+decl.Version, err)
	}

	r := &Recipe{
		meta:         decl.Metadata,
		axes:         slices.Clone(decl.Settings),
		options:      make(map[string][]bool, len(decl.Options)),
		exports:      slices.Clone(decl.ExportsSources),
		sourceSubdir: decl.SourceSubdir,
		buildSystem:  decl.BuildSystem,
	}

	seenAxes := make(map[string]bool, len(r.axes))
	for _, axis := range r.axes {
		if !slices.Contains(knownAxes, axis) {
			return nil, declErr("settings", axis, ErrUnknownSetting)
		}
		if seenAxes[axis] {
			return nil, declErr("settings", axis, ErrUnknownSetting)
		}
		seenAxes[axis] = true
	}

	for name, domain := range decl.Options {
		if name != OptShared {
			return nil, declErr("options", name, ErrInvalidOption)
		}
		if len(domain) == 0 {
			return nil, declErr("options", name, ErrInvalidOption)
		}
		r.options[name] = slices.Clone(domain)
	}
	for name, val := range decl.DefaultOptions {
		domain, ok := r.options[name]
		if !ok || !inDomain(domain, val) {
			return nil, declErr("default_options", name, ErrInvalidOption)
		}
		r.defaultOptions.Shared = val
	}
	if domain, ok := r.options[OptShared]; ok {
		if _, set := decl.DefaultOptions[OptShared]; !set {
			r.defaultOptions.Shared = !inDomain(domain, false)
		}
	}

	switch r.buildSystem {
	case "":
		r.buildSystem = BuildSystemCMake
	case BuildSystemCMake, BuildSystemAutotools:
	default:
		return nil, declErr("build_system", r.buildSystem, ErrInvalidBuildSystem)
	}

	for _, pattern := range r.exports {
		if err := checkPattern(pattern); err != nil {
			return nil, declErr("exports_sources", pattern, err)
		}
	}
	if r.sourceSubdir != "" {
		if err := checkPattern(r.sourceSubdir); err != nil {
			return nil, declErr("source_subdir", r.sourceSubdir, err)
		}
	}

	refs := make([]module.Reference, 0, len(decl.Requires))
	for _, s := range decl.Requires {
		ref, err := module.ParseReference(s)
		if err != nil {
			return nil, declErr("requires", s, err)
		}
		refs = append(refs, ref)
	}
	requires, err := NewDependencySet(refs...)
	if err != nil {
		return nil, err
	}
	r.requires = requires

	generators, err := NewGeneratorSet(decl.Generators...)
	if err != nil {
		return nil, err
	}
	r.generators = generators
	return r, nil
}

// Metadata returns the package identity.
func (r *Recipe) Metadata() Metadata { return r.meta }

// Reference returns the reference the package is published under.
func (r *Recipe) Reference(user, channel string) module.Reference {
	if user == "" {
		user = module.DefaultUser
	}
	if channel == "" {
		channel = module.DefaultChannel
	}
	return module.Reference{Name: r.meta.Name, Version: r.meta.Version, User: user, Channel: channel}
}

// SettingAxes returns the declared setting axes in declaration order.
func (r *Recipe) SettingAxes() []string { return slices.Clone(r.axes) }

// DefaultOptions returns the option values used when nothing is overridden.
func (r *Recipe) DefaultOptions() Options { return r.defaultOptions }

func (r *Recipe) Requires() DependencySet { return r.requires }

func (r *Recipe) Generators() GeneratorSet { return r.generators }

func (r *Recipe) ExportsSources() []string { return slices.Clone(r.exports) }

func (r *Recipe) SourceSubdir() string { return r.sourceSubdir }

func (r *Recipe) BuildSystem() string { return r.buildSystem }

// Declaration returns a declaration equivalent to r.
func (r *Recipe) Declaration() Declaration {
	decl := Declaration{
		Metadata:       r.meta,
		Settings:       slices.Clone(r.axes),
		ExportsSources: slices.Clone(r.exports),
		SourceSubdir:   r.sourceSubdir,
		BuildSystem:    r.buildSystem,
		Generators:     r.generators.Names(),
		Requires:       r.requires.Strings(),
	}
	if len(r.options) > 0 {
		decl.Options = make(map[string][]bool, len(r.options))
		for k, v := range r.options {
			decl.Options[k] = slices.Clone(v)
		}
		decl.DefaultOptions = map[string]bool{OptShared: r.defaultOptions.Shared}
	}
	return decl
}
