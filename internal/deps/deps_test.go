package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goplus/recipe/internal/pkgcache"
	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

func mustRef(t *testing.T, s string) module.Reference {
	t.Helper()
	ref, err := module.ParseReference(s)
	if err != nil {
		t.Fatal(err)
	}
	return ref
}

func depSet(t *testing.T, refs ...string) recipe.DependencySet {
	t.Helper()
	var rs []module.Reference
	for _, s := range refs {
		rs = append(rs, mustRef(t, s))
	}
	set, err := recipe.NewDependencySet(rs...)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

var linuxGCC = recipe.Settings{OS: "linux", Compiler: "gcc", BuildType: "Release", Arch: "x86_64"}

func TestFileResolver(t *testing.T) {
	data := []byte(`
dependencies:
  - ref: spdlog/0.16.3@bincrafters/stable
    root_dir: spdlog
    include_dirs: [include]
    defines: [SPDLOG_FMT_EXTERNAL]
  - ref: clara/1.1.1@bincrafters/stable
    root_dir: /opt/clara
    include_dirs: [include]
    lib_dirs: [lib]
    libs: [clara]
`)
	r, err := ParseFile("/base", data)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	res, err := r.Resolve(context.Background(), depSet(t,
		"clara/1.1.1@bincrafters/stable",
		"spdlog/0.16.3@bincrafters/stable",
	), linuxGCC)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Deps) != 2 || res.Deps[0].Ref.Name != "clara" || res.Deps[1].Ref.Name != "spdlog" {
		t.Fatalf("Resolve() order = %+v, want declaration order", res.Deps)
	}
	if got, want := res.Deps[1].RootDir, filepath.Join("/base", "spdlog"); got != want {
		t.Errorf("relative root = %q, want %q", got, want)
	}
	agg := res.Aggregated()
	wantInc := []string{filepath.Join("/opt/clara", "include"), filepath.Join("/base", "spdlog", "include")}
	if !reflect.DeepEqual(agg.IncludeDirs, wantInc) {
		t.Errorf("Aggregated().IncludeDirs = %v, want %v", agg.IncludeDirs, wantInc)
	}
	if !reflect.DeepEqual(agg.Libs, []string{"clara"}) || !reflect.DeepEqual(agg.Defines, []string{"SPDLOG_FMT_EXTERNAL"}) {
		t.Errorf("Aggregated() = %+v", agg)
	}
	if d, ok := res.Lookup("spdlog"); !ok || d.Ref.Version != "0.16.3" {
		t.Errorf("Lookup(spdlog) = %+v, %v", d, ok)
	}
}

func TestFileResolver_Errors(t *testing.T) {
	r, err := ParseFile("/", []byte("dependencies:\n  - ref: clara/1.1.0@bincrafters/stable\n    root_dir: /c\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Resolve(context.Background(), depSet(t, "clara/1.1.1@bincrafters/stable"), linuxGCC)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("Resolve() error = %v, want ErrVersionMismatch", err)
	}
	_, err = r.Resolve(context.Background(), depSet(t, "gtest/1.8.0@bincrafters/stable"), linuxGCC)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}

	if _, err := ParseFile("/", []byte("dependencies:\n  - ref: clara\n")); err == nil {
		t.Error("ParseFile() with malformed ref should fail")
	}
	dup := "dependencies:\n  - ref: a/1.0\n  - ref: a/1.0\n"
	if _, err := ParseFile("/", []byte(dup)); err == nil {
		t.Error("ParseFile() with duplicate entries should fail")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deps.json")
	data := `{"dependencies": [{"ref": "gtest/1.8.0@bincrafters/stable", "root_dir": "gtest", "libs": ["gtest", "gtest_main"]}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	res, err := r.Resolve(context.Background(), depSet(t, "gtest/1.8.0@bincrafters/stable"), linuxGCC)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := res.RootDirs(), []string{filepath.Join(dir, "gtest")}; !reflect.DeepEqual(got, want) {
		t.Errorf("RootDirs() = %v, want %v", got, want)
	}
}

func installFake(t *testing.T, c *pkgcache.Cache, ref module.Reference, matrix string, s recipe.Settings, shared bool) string {
	t.Helper()
	dir, err := c.PackageDir(ref, matrix)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	info := &pkgcache.Info{
		Ref:      ref,
		Settings: s,
		Options:  recipe.Options{Shared: shared},
		Cpp:      pkgcache.CppInfo{IncludeDirs: []string{"include"}, LibDirs: []string{"lib"}, Libs: []string{ref.Name}},
	}
	if err := pkgcache.WriteInfo(dir, info); err != nil {
		t.Fatal(err)
	}
	idx, err := c.LoadIndex(ref)
	if err != nil {
		t.Fatal(err)
	}
	idx.Set(&pkgcache.Entry{Matrix: matrix, Settings: s, Options: info.Options, PackageDir: dir})
	if err := c.SaveIndex(ref, idx); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCacheResolver(t *testing.T) {
	c := pkgcache.New(t.TempDir())
	clara := mustRef(t, "clara/1.1.1@bincrafters/stable")

	debug := linuxGCC
	debug.BuildType = "Debug"
	installFake(t, c, clara, "debug+static", debug, false)
	staticDir := installFake(t, c, clara, "release+static", linuxGCC, false)
	sharedDir := installFake(t, c, clara, "release+shared", linuxGCC, true)

	t.Run("static preferred", func(t *testing.T) {
		r := &CacheResolver{Cache: c}
		res, err := r.Resolve(context.Background(), depSet(t, clara.String()), linuxGCC)
		if err != nil {
			t.Fatal(err)
		}
		if res.Deps[0].RootDir != staticDir {
			t.Errorf("RootDir = %q, want %q", res.Deps[0].RootDir, staticDir)
		}
		if want := filepath.Join(staticDir, "include"); res.Deps[0].IncludeDirs[0] != want {
			t.Errorf("IncludeDirs = %v, want %q", res.Deps[0].IncludeDirs, want)
		}
	})

	t.Run("shared preferred", func(t *testing.T) {
		r := &CacheResolver{Cache: c, PreferShared: true}
		res, err := r.Resolve(context.Background(), depSet(t, clara.String()), linuxGCC)
		if err != nil {
			t.Fatal(err)
		}
		if res.Deps[0].RootDir != sharedDir {
			t.Errorf("RootDir = %q, want %q", res.Deps[0].RootDir, sharedDir)
		}
	})

	t.Run("no compatible build", func(t *testing.T) {
		r := &CacheResolver{Cache: c}
		other := linuxGCC
		other.Compiler = "clang"
		_, err := r.Resolve(context.Background(), depSet(t, clara.String()), other)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing package", func(t *testing.T) {
		r := &CacheResolver{Cache: c}
		_, err := r.Resolve(context.Background(), depSet(t, "Qt/5.11@bincrafters/stable"), linuxGCC)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &CacheResolver{Cache: c}
		if _, err := r.Resolve(ctx, depSet(t, clara.String()), linuxGCC); !errors.Is(err, context.Canceled) {
			t.Errorf("Resolve() error = %v, want context.Canceled", err)
		}
	})
}
