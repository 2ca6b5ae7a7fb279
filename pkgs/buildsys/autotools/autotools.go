// Package autotools drives configure/make based builds.
package autotools

import (
	"io"
	"os"
	"path/filepath"

	"github.com/goplus/recipe/pkgs/buildsys"
)

// AutoTools wraps common Autotools build steps.
type AutoTools struct {
	sourceDir  string
	buildDir   string
	installDir string
	host       string
	shared     *bool
	env        buildsys.Environ
	runner     buildsys.Runner
	stream     io.Writer
}

var _ buildsys.BuildSystem = (*AutoTools)(nil)

// New returns an AutoTools driver building sourceDir out of tree in
// buildDir and installing into installDir.
func New(sourceDir, buildDir, installDir string) *AutoTools {
	return &AutoTools{
		sourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: installDir,
		env:        buildsys.Environ{},
	}
}

// WithRunner replaces the command runner; nil restores buildsys.ExecRunner.
func (a *AutoTools) WithRunner(r buildsys.Runner) *AutoTools {
	a.runner = r
	return a
}

// WithOutput mirrors tool output to w while it runs.
func (a *AutoTools) WithOutput(w io.Writer) *AutoTools {
	a.stream = w
	return a
}

// Host sets the --host triplet of a cross build.
func (a *AutoTools) Host(triplet string) *AutoTools {
	a.host = triplet
	return a
}

func (a *AutoTools) Env(key, value string) {
	a.env.Set(key, value)
}

// Shared maps the link kind to --enable-shared/--disable-static and
// their opposites.
func (a *AutoTools) Shared(on bool) {
	a.shared = &on
}

// Use configures the build environment to use dep.
func (a *AutoTools) Use(dep buildsys.Dep) {
	buildsys.UseDep(&a.env, dep)
}

// Configure runs <source>/configure from the build directory.
func (a *AutoTools) Configure(args ...string) error {
	if err := os.MkdirAll(a.buildDir, 0o755); err != nil {
		return err
	}
	configArgs := []string{}
	if a.installDir != "" {
		configArgs = append(configArgs, "--prefix="+a.installDir)
	}
	if a.host != "" {
		configArgs = append(configArgs, "--host="+a.host)
	}
	if a.shared != nil {
		if *a.shared {
			configArgs = append(configArgs, "--enable-shared", "--disable-static")
		} else {
			configArgs = append(configArgs, "--disable-shared", "--enable-static")
		}
	}
	configArgs = append(configArgs, args...)
	return a.run(filepath.Join(a.sourceDir, "configure"), configArgs)
}

// Build runs make (or the provided command) in the build directory.
func (a *AutoTools) Build(args ...string) error {
	if len(args) == 0 {
		args = []string{"make"}
	}
	return a.run(args[0], args[1:])
}

// Install runs make install (or the provided command) in the build directory.
func (a *AutoTools) Install(args ...string) error {
	if len(args) == 0 {
		args = []string{"make", "install"}
	}
	return a.run(args[0], args[1:])
}

// OutputDir returns the install dir if set, otherwise the build dir.
func (a *AutoTools) OutputDir() string {
	if a.installDir != "" {
		return a.installDir
	}
	return a.buildDir
}

func (a *AutoTools) run(bin string, args []string) error {
	return buildsys.Exec(a.runner, &buildsys.Command{
		Name: bin,
		Args: args,
		Dir:  a.buildDir,
		Env:  a.env.Merge(os.Environ()),
	}, a.stream)
}
