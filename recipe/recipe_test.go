package recipe

import (
	"errors"
	"reflect"
	"testing"
	"testing/fstest"
)

func sampleDecl() Declaration {
	return Declaration{
		Metadata: Metadata{
			Name:    "myproject",
			Version: "0.0.1",
			License: "MIT",
		},
		Settings:       []string{AxisOS, AxisCompiler, AxisBuildType, AxisArch},
		Options:        map[string][]bool{OptShared: {true, false}},
		DefaultOptions: map[string]bool{OptShared: false},
		ExportsSources: []string{"src/*"},
		Generators:     []string{GenCMake, GenCompilerArgs, GenTxt},
		Requires: []string{
			"clara/1.1.1@bincrafters/stable",
			"spdlog/0.16.3@bincrafters/stable",
			"protobuf/3.5.2@bincrafters/stable",
			"gtest/1.8.0@bincrafters/stable",
			"Qt/5.11@bincrafters/stable",
		},
	}
}

func TestDeclare_Deterministic(t *testing.T) {
	r1, err := Declare(sampleDecl())
	if err != nil {
		t.Fatalf("Declare() error = %v", err)
	}
	r2, err := Declare(sampleDecl())
	if err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	if !reflect.DeepEqual(r1.Requires().Strings(), r2.Requires().Strings()) {
		t.Errorf("DependencySet differs: %v vs %v", r1.Requires().Strings(), r2.Requires().Strings())
	}
	if !reflect.DeepEqual(r1.Generators().Names(), r2.Generators().Names()) {
		t.Errorf("GeneratorSet differs: %v vs %v", r1.Generators().Names(), r2.Generators().Names())
	}

	want := []string{
		"clara/1.1.1@bincrafters/stable",
		"spdlog/0.16.3@bincrafters/stable",
		"protobuf/3.5.2@bincrafters/stable",
		"gtest/1.8.0@bincrafters/stable",
		"Qt/5.11@bincrafters/stable",
	}
	if got := r1.Requires().Strings(); !reflect.DeepEqual(got, want) {
		t.Errorf("Requires() = %v, want %v", got, want)
	}
}

func TestDeclare_Immutable(t *testing.T) {
	decl := sampleDecl()
	r, err := Declare(decl)
	if err != nil {
		t.Fatal(err)
	}
	decl.Requires[0] = "zlib/1.2.11"
	decl.Generators[0] = GenTxt

	refs := r.Requires().Refs()
	refs[0].Name = "mutated"
	names := r.Generators().Names()
	names[0] = "mutated"

	if got := r.Requires().At(0).Name; got != "clara" {
		t.Errorf("Requires().At(0).Name = %q, want clara", got)
	}
	if got := r.Generators().At(0); got != GenCMake {
		t.Errorf("Generators().At(0) = %q, want cmake", got)
	}
}

func TestDeclare_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Declaration)
		field   string
		wantErr error
	}{
		{"missing name", func(d *Declaration) { d.Name = "" }, "name", ErrMissingField},
		{"empty version", func(d *Declaration) { d.Version = "" }, "version", ErrMalformedVersion},
		{"malformed version", func(d *Declaration) { d.Version = "one" }, "version", ErrMalformedVersion},
		{"empty dependency version", func(d *Declaration) {
			d.Requires = append(d.Requires, "zlib/@conan/stable")
		}, "requires", ErrMalformedVersion},
		{"malformed dependency version", func(d *Declaration) {
			d.Requires = append(d.Requires, "zlib/1.2.x@conan/stable")
		}, "requires", ErrMalformedVersion},
		{"malformed reference", func(d *Declaration) {
			d.Requires = append(d.Requires, "zlib")
		}, "requires", ErrMalformedReference},
		{"duplicate dependency", func(d *Declaration) {
			d.Requires = append(d.Requires, "clara/1.2.0@bincrafters/stable")
		}, "requires", ErrDuplicateDependency},
		{"unknown generator", func(d *Declaration) {
			d.Generators = append(d.Generators, "visual_studio")
		}, "generators", ErrUnknownGenerator},
		{"duplicate generator", func(d *Declaration) {
			d.Generators = append(d.Generators, GenTxt)
		}, "generators", ErrDuplicateGenerator},
		{"unknown setting", func(d *Declaration) {
			d.Settings = append(d.Settings, "cppstd")
		}, "settings", ErrUnknownSetting},
		{"unknown option", func(d *Declaration) {
			d.Options["fPIC"] = []bool{true, false}
		}, "options", ErrInvalidOption},
		{"default outside domain", func(d *Declaration) {
			d.Options[OptShared] = []bool{true}
		}, "default_options", ErrInvalidOption},
		{"bad build system", func(d *Declaration) { d.BuildSystem = "bazel" }, "build_system", ErrInvalidBuildSystem},
		{"escaping source pattern", func(d *Declaration) {
			d.ExportsSources = []string{"../secret/*"}
		}, "exports_sources", ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := sampleDecl()
			tt.mutate(&decl)
			_, err := Declare(decl)
			var de *DeclarationError
			if !errors.As(err, &de) {
				t.Fatalf("Declare() error = %v, want *DeclarationError", err)
			}
			if de.Field != tt.field {
				t.Errorf("DeclarationError.Field = %q, want %q", de.Field, tt.field)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Declare() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeclare_Defaults(t *testing.T) {
	decl := sampleDecl()
	decl.DefaultOptions = nil
	decl.BuildSystem = ""
	r, err := Declare(decl)
	if err != nil {
		t.Fatal(err)
	}
	if r.DefaultOptions().Shared {
		t.Error("DefaultOptions().Shared = true, want false")
	}
	if r.BuildSystem() != BuildSystemCMake {
		t.Errorf("BuildSystem() = %q, want %q", r.BuildSystem(), BuildSystemCMake)
	}

	decl.Options = map[string][]bool{OptShared: {true}}
	r, err = Declare(decl)
	if err != nil {
		t.Fatal(err)
	}
	if !r.DefaultOptions().Shared {
		t.Error("shared-only domain should default to shared")
	}
}

func TestResolveOptions(t *testing.T) {
	r, err := Declare(sampleDecl())
	if err != nil {
		t.Fatal(err)
	}

	opts, err := r.ResolveOptions()
	if err != nil || opts.Shared {
		t.Fatalf("ResolveOptions() = %+v, %v; want static", opts, err)
	}
	opts, err = r.ResolveOptions("shared=True")
	if err != nil || !opts.Shared {
		t.Fatalf("ResolveOptions(shared=True) = %+v, %v; want shared", opts, err)
	}
	opts, err = r.ResolveOptions("shared=True", "shared=False")
	if err != nil || opts.Shared {
		t.Fatalf("later overrides must win, got %+v, %v", opts, err)
	}

	for _, bad := range []string{"shared", "fPIC=True", "shared=maybe"} {
		if _, err := r.ResolveOptions(bad); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("ResolveOptions(%q) error = %v, want ErrInvalidOption", bad, err)
		}
	}
}

func TestSourceFiles(t *testing.T) {
	decl := sampleDecl()
	decl.ExportsSources = []string{"src/*", "CMakeLists.txt"}
	r, err := Declare(decl)
	if err != nil {
		t.Fatal(err)
	}
	fsys := fstest.MapFS{
		"CMakeLists.txt":         {Data: []byte("project(x)")},
		"README.md":              {Data: []byte("readme")},
		"src/main.cpp":           {Data: []byte("int main(){}")},
		"src/detail/util.hpp":    {Data: []byte("#pragma once")},
		"tests/test_main.cpp":    {Data: []byte("")},
		"srcs/not_matched.cpp":   {Data: []byte("")},
		"src-extra/ignored.hpp":  {Data: []byte("")},
		"build/CMakeCache.txt":   {Data: []byte("")},
		"src/detail/impl/a.cpp":  {Data: []byte("")},
		"CMakeLists.txt.backup":  {Data: []byte("")},
		"docs/CMakeLists.txt":    {Data: []byte("")},
		"src/detail/impl/b.h":    {Data: []byte("")},
		"src/detail/impl/c.hpp":  {Data: []byte("")},
		"src/detail/impl/d.inl":  {Data: []byte("")},
		"src/detail/impl/e.ipp":  {Data: []byte("")},
		"src/detail/impl/f.tcc":  {Data: []byte("")},
		"src/detail/impl/g.cppm": {Data: []byte("")},
	}
	got, err := r.SourceFiles(fsys)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"CMakeLists.txt",
		"src/detail/impl/a.cpp",
		"src/detail/impl/b.h",
		"src/detail/impl/c.hpp",
		"src/detail/impl/d.inl",
		"src/detail/impl/e.ipp",
		"src/detail/impl/f.tcc",
		"src/detail/impl/g.cppm",
		"src/detail/util.hpp",
		"src/main.cpp",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SourceFiles() = %v, want %v", got, want)
	}
}

func TestMatchSource(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"src/*", "src/main.cpp", true},
		{"src/*", "src/a/b.cpp", true},
		{"src/*", "srcs/main.cpp", false},
		{"*.txt", "CMakeLists.txt", true},
		{"include/?.h", "include/a.h", true},
		{"include/[ab].h", "include/c.h", false},
		{"include/[!ab].h", "include/c.h", true},
	}
	for _, tt := range tests {
		if got := MatchSource(tt.pattern, tt.name); got != tt.want {
			t.Errorf("MatchSource(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func TestSettingsSelect(t *testing.T) {
	s := Settings{OS: "linux", Compiler: "gcc", BuildType: "Release", Arch: "x86_64"}
	got := s.Select([]string{AxisOS, AxisArch})
	if want := (Settings{OS: "linux", Arch: "x86_64"}); got != want {
		t.Errorf("Select() = %+v, want %+v", got, want)
	}
	if err := got.Check([]string{AxisOS, AxisArch}); err != nil {
		t.Errorf("Check() error = %v", err)
	}
	if err := got.Check([]string{AxisBuildType}); err == nil {
		t.Error("Check() accepted a missing build_type")
	}
}
