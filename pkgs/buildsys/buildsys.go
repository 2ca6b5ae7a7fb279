package buildsys

import (
	"os"
	"path/filepath"
	"runtime"
)

// BuildSystem captures shared capabilities of build helpers (CMake, Autotools, etc).
// It keeps the common lifecycle and dependency/env setup; implementations add their own extras.
type BuildSystem interface {
	// Use injects a resolved dependency into the build environment.
	Use(dep Dep)

	// Environment helper.
	Env(key, val string)

	// Shared selects shared (true) or static (false) libraries.
	Shared(on bool)

	// Lifecycle.
	Configure(args ...string) error
	Build(args ...string) error
	Install(args ...string) error

	// Where artifacts land.
	OutputDir() string
}

// Dep is a dependency as seen by a build system: its install root and
// the include and library directories consumers compile against.
type Dep struct {
	Root        string
	IncludeDirs []string
	LibDirs     []string
}

// StdDep returns the conventional layout of a dependency installed at root.
func StdDep(root string) Dep {
	return Dep{
		Root:        root,
		IncludeDirs: []string{filepath.Join(root, "include")},
		LibDirs:     []string{filepath.Join(root, "lib")},
	}
}

// UseDep records in env the variables that let CMake, pkg-config and the
// compilers find headers, libraries and pkg-config files of dep.
// Directories that do not exist are skipped.
func UseDep(env *Environ, dep Dep) {
	exists := func(dir string) bool {
		_, err := os.Stat(dir)
		return err == nil
	}

	if exists(dep.Root) {
		env.Prepend("CMAKE_PREFIX_PATH", dep.Root)
	}
	for _, libDir := range dep.LibDirs {
		if pkgconfigDir := filepath.Join(libDir, "pkgconfig"); exists(pkgconfigDir) {
			env.Prepend("PKG_CONFIG_PATH", pkgconfigDir)
		}
	}
	for _, includeDir := range dep.IncludeDirs {
		if !exists(includeDir) {
			continue
		}
		env.Prepend("CMAKE_INCLUDE_PATH", includeDir)
		if runtime.GOOS == "windows" {
			env.Prepend("INCLUDE", includeDir)
		} else {
			env.AppendFlag("CPPFLAGS", "-I"+includeDir)
		}
	}
	for _, libDir := range dep.LibDirs {
		if !exists(libDir) {
			continue
		}
		env.Prepend("CMAKE_LIBRARY_PATH", libDir)
		if runtime.GOOS == "windows" {
			env.Prepend("LIB", libDir)
		} else {
			env.AppendFlag("LDFLAGS", "-L"+libDir)
		}
	}
}
