package cmake

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/goplus/recipe/pkgs/buildsys"
)

type recorder struct {
	cmds []*buildsys.Command
	fail map[string]error // keyed by first arg
	out  string
}

func (r *recorder) Run(cmd *buildsys.Command, out io.Writer) error {
	r.cmds = append(r.cmds, cmd)
	io.WriteString(out, r.out)
	if err, ok := r.fail[cmd.Args[0]]; ok {
		return err
	}
	return nil
}

func TestUseSetsEnv(t *testing.T) {
	tempDir := t.TempDir()
	includeDir := filepath.Join(tempDir, "include")
	libDir := filepath.Join(tempDir, "lib")
	pkgconfigDir := filepath.Join(libDir, "pkgconfig")

	for _, dir := range []string{includeDir, libDir, pkgconfigDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	before := os.Getenv("CMAKE_PREFIX_PATH")
	c := New("src", "build", "")
	c.Use(buildsys.StdDep(tempDir))

	expectEq := map[string]string{
		"PKG_CONFIG_PATH":    pkgconfigDir,
		"CMAKE_PREFIX_PATH":  tempDir,
		"CMAKE_INCLUDE_PATH": includeDir,
		"CMAKE_LIBRARY_PATH": libDir,
	}
	for k, v := range expectEq {
		if got, _ := c.env.Get(k); got != v {
			t.Fatalf("%s = %q, want %q", k, got, v)
		}
	}

	if runtime.GOOS == "windows" {
		if got, _ := c.env.Get("INCLUDE"); got != includeDir {
			t.Fatalf("INCLUDE = %q, want %q", got, includeDir)
		}
	} else {
		if got, _ := c.env.Get("CPPFLAGS"); got != "-I"+includeDir {
			t.Fatalf("CPPFLAGS = %q, want %q", got, "-I"+includeDir)
		}
		if got, _ := c.env.Get("LDFLAGS"); got != "-L"+libDir {
			t.Fatalf("LDFLAGS = %q, want %q", got, "-L"+libDir)
		}
	}

	if got := os.Getenv("CMAKE_PREFIX_PATH"); got != before {
		t.Fatalf("process environment modified: CMAKE_PREFIX_PATH = %q", got)
	}
}

func TestUseSkipsMissingDirs(t *testing.T) {
	c := New("src", "build", "")
	c.Use(buildsys.StdDep(filepath.Join(t.TempDir(), "absent")))
	if got := c.env.Merge(nil); len(got) != 0 {
		t.Fatalf("env = %q, want empty", got)
	}
}

func TestOutputDirPrefersInstall(t *testing.T) {
	c := New("src", "build", "")
	if got := c.OutputDir(); got != "build" {
		t.Fatalf("default OutputDir = %q, want %q", got, "build")
	}
	c = New("src", "build", "custom-install")
	if got := c.OutputDir(); got != "custom-install" {
		t.Fatalf("OutputDir with install dir = %q, want %q", got, "custom-install")
	}
}

func TestCommandLines(t *testing.T) {
	tmp := t.TempDir()
	buildDir := filepath.Join(tmp, "build")
	rec := &recorder{}
	c := New("src", buildDir, "/pkg").WithRunner(rec)
	c.BuildType("Release").Generator("Ninja")
	c.Shared(true)
	c.Define("FOO", "BAR")
	c.Env("CXX", "g++")

	if err := c.Configure("-Wno-dev"); err != nil {
		t.Fatal(err)
	}
	if err := c.Build("--parallel"); err != nil {
		t.Fatal(err)
	}
	if err := c.Install(); err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"-S", "src", "-B", buildDir, "-G", "Ninja",
			"-DBUILD_SHARED_LIBS:BOOL=ON",
			"-DCMAKE_BUILD_TYPE:STRING=Release",
			"-DCMAKE_INSTALL_PREFIX:STRING=/pkg",
			"-DFOO:STRING=BAR",
			"-Wno-dev"},
		{"--build", buildDir, "--config", "Release", "--parallel"},
		{"--install", buildDir, "--config", "Release", "--prefix", "/pkg"},
	}
	if len(rec.cmds) != len(want) {
		t.Fatalf("ran %d commands, want %d", len(rec.cmds), len(want))
	}
	for i, cmd := range rec.cmds {
		if cmd.Name != "cmake" {
			t.Errorf("cmd[%d].Name = %q", i, cmd.Name)
		}
		if !reflect.DeepEqual(cmd.Args, want[i]) {
			t.Errorf("cmd[%d].Args = %q, want %q", i, cmd.Args, want[i])
		}
		found := false
		for _, kv := range cmd.Env {
			if kv == "CXX=g++" {
				found = true
			}
		}
		if !found {
			t.Errorf("cmd[%d] env missing CXX=g++", i)
		}
	}
	if _, err := os.Stat(buildDir); err != nil {
		t.Errorf("Configure() did not create build dir: %v", err)
	}
}

func TestStaticDefine(t *testing.T) {
	rec := &recorder{}
	c := New("src", filepath.Join(t.TempDir(), "b"), "").WithRunner(rec)
	c.Shared(false)
	if err := c.Configure(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.cmds[0].String(), "-DBUILD_SHARED_LIBS:BOOL=OFF") {
		t.Errorf("configure = %q, want BUILD_SHARED_LIBS OFF", rec.cmds[0])
	}
}

func TestToolErrorCarriesOutput(t *testing.T) {
	boom := errors.New("exit status 1")
	rec := &recorder{out: "CMake Error at CMakeLists.txt:3\n", fail: map[string]error{"--build": boom}}
	var stream strings.Builder
	c := New("src", filepath.Join(t.TempDir(), "b"), "").WithRunner(rec).WithOutput(&stream)

	if err := c.Configure(); err != nil {
		t.Fatal(err)
	}
	err := c.Build()
	var te *buildsys.ToolError
	if !errors.As(err, &te) {
		t.Fatalf("Build() error = %v, want *buildsys.ToolError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Build() error does not wrap the runner error")
	}
	if string(te.Output) != "CMake Error at CMakeLists.txt:3\n" {
		t.Errorf("Output = %q", te.Output)
	}
	if !strings.HasPrefix(te.Cmd, "cmake --build") {
		t.Errorf("Cmd = %q", te.Cmd)
	}
	if strings.Count(stream.String(), "CMake Error") != 2 {
		t.Errorf("stream = %q, want output of both runs", stream.String())
	}
}

func TestConfigureBuildInstallE2E(t *testing.T) {
	if _, err := exec.LookPath("cmake"); err != nil {
		t.Skip("cmake not found in PATH")
	}

	tmp := t.TempDir()
	installDir := filepath.Join(tmp, "install")
	buildDir := filepath.Join(tmp, "build")
	sourceDir, err := filepath.Abs(filepath.Join("testdata", "project"))
	if err != nil {
		t.Fatal(err)
	}

	c := New(sourceDir, buildDir, installDir)
	c.Env("CUSTOM", "VAL")
	c.BuildType("Release")
	c.Shared(false)
	c.Define("FOO", "BAR")
	c.DefineBool("ENABLE", true)

	if err := c.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := c.Build(); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := c.Install(); err != nil {
		t.Fatalf("install: %v", err)
	}

	wantHeader := filepath.Join(installDir, "include", "dummy.h")
	if _, err := os.Stat(wantHeader); err != nil {
		t.Fatalf("installed header missing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(buildDir, "CMakeCache.txt"))
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	content := string(data)
	for _, snippet := range []string{
		"FOO:STRING=BAR",
		"ENABLE:BOOL=ON",
		"BUILD_SHARED_LIBS:BOOL=OFF",
		"CMAKE_BUILD_TYPE:STRING=Release",
	} {
		if !strings.Contains(content, snippet) {
			t.Fatalf("cache missing %q", snippet)
		}
	}
}
