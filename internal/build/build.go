// Package build runs a recipe's configure, compile and install steps and
// records the installed package in the local package cache.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goplus/recipe/internal/build/lockedfile"
	"github.com/goplus/recipe/internal/deps"
	"github.com/goplus/recipe/internal/generator"
	"github.com/goplus/recipe/internal/pkgcache"
	"github.com/goplus/recipe/internal/profile"
	"github.com/goplus/recipe/pkgs/buildsys"
	"github.com/goplus/recipe/pkgs/buildsys/autotools"
	"github.com/goplus/recipe/pkgs/buildsys/cmake"
	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

// Builder builds recipes into a package cache.
type Builder struct {
	Cache *pkgcache.Cache

	// Resolver resolves the recipe's requirements when the request does
	// not carry its own. Nil resolves from Cache.
	Resolver deps.Resolver

	// Runner runs the build tools. Nil runs them as child processes.
	Runner buildsys.Runner

	// Output, if set, receives tool output as it is produced.
	Output io.Writer

	Logger logrus.FieldLogger

	// CMakeGenerator is passed to cmake -G when set.
	CMakeGenerator string

	// KeepBuildDir leaves the temporary build tree in place.
	KeepBuildDir bool

	// TempDir is where build trees are created; "" uses os.TempDir.
	TempDir string

	// Host is the os and arch of the build machine. A profile targeting
	// anything else is built as a cross build. Zero uses profile.Host.
	Host recipe.Settings
}

// Request is a single build invocation.
type Request struct {
	Recipe  *recipe.Recipe
	Profile *profile.Profile

	// Options overrides the recipe's default options, as "name=value".
	Options []string

	User    string
	Channel string

	// Force rebuilds even when the package cache already holds the build.
	Force bool

	// Resolver overrides Builder.Resolver for this request.
	Resolver deps.Resolver
}

// Result describes an installed package.
type Result struct {
	Ref        module.Reference
	Matrix     string
	PackageDir string

	// Generated holds the absolute paths of the generator outputs copied
	// into PackageDir, in generator declaration order.
	Generated []string

	Artifacts []pkgcache.Artifact
	Shared    bool

	// Cached is set when the result was served from the package cache.
	Cached bool
}

func (b *Builder) logger() logrus.FieldLogger {
	if b.Logger == nil {
		return logrus.StandardLogger()
	}
	return b.Logger
}

// Build configures, compiles and installs req.Recipe for req.Profile.
// A failing step is reported as an *Error and the later steps are not
// run. The temporary build tree and the package lock are released on
// every path.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	r := req.Recipe
	if r == nil {
		return nil, errors.New("build: no recipe")
	}
	if b.Cache == nil {
		return nil, errors.New("build: no package cache")
	}
	prof := req.Profile
	if prof == nil {
		prof = &profile.Profile{Name: "empty"}
	}
	opts, err := r.ResolveOptions(req.Options...)
	if err != nil {
		return nil, err
	}
	settings := prof.Settings
	if err := settings.Check(r.SettingAxes()); err != nil {
		return nil, fmt.Errorf("profile %s: %w", prof.Name, err)
	}

	ref := r.Reference(req.User, req.Channel)
	matrix := recipe.NewMatrix(r.SettingAxes(), settings, opts).String()
	log := b.logger().WithFields(logrus.Fields{"ref": ref.String(), "matrix": matrix})

	refDir, err := b.Cache.RefDir(ref)
	if err != nil {
		return nil, err
	}
	unlock, err := lockedfile.MutexAt(filepath.Join(refDir, ".lock")).Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	digest, err := recipeDigest(r)
	if err != nil {
		return nil, err
	}
	idx, err := b.Cache.LoadIndex(ref)
	if err != nil {
		return nil, fmt.Errorf("load build index of %s: %w", ref, err)
	}
	resolution, err := b.resolve(ctx, req, r, settings, opts)
	if err != nil {
		return nil, err
	}
	depsDigest, err := dependencyDigest(resolution)
	if err != nil {
		return nil, err
	}
	// Double-check cache after acquiring lock (another process may have built it)
	if !req.Force {
		if res, ok := b.cached(ref, idx, matrix, digest, depsDigest, r.Generators()); ok {
			log.Info("package already built")
			return res, nil
		}
	}

	workDir, err := os.MkdirTemp(b.TempDir, "recipe-build-")
	if err != nil {
		return nil, err
	}
	if b.KeepBuildDir {
		log.WithField("dir", workDir).Info("keeping build directory")
	} else {
		defer os.RemoveAll(workDir)
	}

	srcDir := filepath.Join(workDir, "src")
	buildDir := filepath.Join(workDir, "build")
	if err := stageSources(r, srcDir); err != nil {
		return nil, fmt.Errorf("stage sources: %w", err)
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, err
	}
	genPaths, err := generator.Write(buildDir, r.Generators(), &generator.Input{
		Recipe:   r,
		Settings: settings,
		Options:  opts,
		Deps:     resolution,
	})
	if err != nil {
		return nil, err
	}

	pkgDir, err := b.Cache.PackageDir(ref, matrix)
	if err != nil {
		return nil, err
	}
	sourceDir := srcDir
	if sub := r.SourceSubdir(); sub != "" {
		sourceDir = filepath.Join(srcDir, filepath.FromSlash(sub))
	}
	bs, err := b.buildSystem(r, sourceDir, buildDir, pkgDir, prof, log)
	if err != nil {
		return nil, err
	}
	bs.Shared(opts.Shared)

	if err := os.RemoveAll(pkgDir); err != nil {
		return nil, err
	}
	installed := false
	defer func() {
		if !installed {
			os.RemoveAll(pkgDir)
		}
	}()

	for _, dep := range resolution.Deps {
		bs.Use(buildsys.Dep{Root: dep.RootDir, IncludeDirs: dep.IncludeDirs, LibDirs: dep.LibDirs})
	}

	steps := []struct {
		step Step
		run  func(...string) error
	}{
		{StepConfigure, bs.Configure},
		{StepCompile, bs.Build},
		{StepInstall, bs.Install},
	}
	for _, s := range steps {
		log.WithField("step", s.step).Info("running")
		if err := s.run(); err != nil {
			log.WithField("step", s.step).WithError(err).Error("step failed")
			return nil, stepError(s.step, ref, err)
		}
	}

	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return nil, err
	}
	generated := make([]string, 0, len(genPaths))
	for _, p := range genPaths {
		name := filepath.Base(p)
		if err := copyFile(p, filepath.Join(pkgDir, name)); err != nil {
			return nil, err
		}
		generated = append(generated, name)
	}
	artifacts, err := scanArtifacts(bs.OutputDir(), generated)
	if err != nil {
		return nil, err
	}
	recorded := settings.Select(r.SettingAxes())
	built := time.Now()
	info := &pkgcache.Info{
		Ref:       ref,
		Settings:  recorded,
		Options:   opts,
		Cpp:       cppInfo(pkgDir, artifacts),
		BuildTime: built,
	}
	if err := pkgcache.WriteInfo(pkgDir, info); err != nil {
		return nil, err
	}

	entry := &pkgcache.Entry{
		Matrix:       matrix,
		Settings:     recorded,
		Options:      opts,
		PackageDir:   pkgDir,
		Artifacts:    artifacts,
		RecipeDigest: digest,
		DepsDigest:   depsDigest,
		BuildTime:    built,
	}
	idx.Set(entry)
	if err := b.Cache.SaveIndex(ref, idx); err != nil {
		return nil, err
	}
	installed = true

	if hasKind(artifacts, pkgcache.KindStatic) && hasKind(artifacts, pkgcache.KindShared) {
		log.Warn("package installs both static and shared libraries")
	}
	log.WithField("dir", pkgDir).Info("package installed")
	return resultFromEntry(ref, entry, r.Generators(), false), nil
}

func (b *Builder) resolve(ctx context.Context, req Request, r *recipe.Recipe, settings recipe.Settings, opts recipe.Options) (*deps.Resolution, error) {
	requires := r.Requires()
	if requires.Len() == 0 {
		return &deps.Resolution{}, nil
	}
	resolver := req.Resolver
	if resolver == nil {
		resolver = b.Resolver
	}
	if resolver == nil {
		resolver = &deps.CacheResolver{Cache: b.Cache, PreferShared: opts.Shared}
	}
	res, err := resolver.Resolve(ctx, requires, settings)
	if err != nil {
		return nil, fmt.Errorf("resolve requirements of %s: %w", r.Metadata().Name, err)
	}
	return res, nil
}

// buildSystem returns the driver of r configured for prof: its build
// type, target platform and compiler.
func (b *Builder) buildSystem(r *recipe.Recipe, sourceDir, buildDir, installDir string, prof *profile.Profile, log logrus.FieldLogger) (buildsys.BuildSystem, error) {
	settings := prof.Settings
	host := b.Host
	if host.OS == "" && host.Arch == "" {
		host = profile.Host()
	}
	target := settings
	if target.OS == "" {
		target.OS = host.OS
	}
	if target.Arch == "" {
		target.Arch = host.Arch
	}
	var triplet string
	cross := target.OS != host.OS || target.Arch != host.Arch
	if cross && prof.Toolchain == "" {
		triplet = buildsys.Triplet(target.OS, target.Arch)
	}
	ccEnv, err := compilerEnv(settings.Compiler, triplet, prof.Env, log)
	if err != nil {
		return nil, err
	}

	var bs buildsys.BuildSystem
	if r.BuildSystem() == recipe.BuildSystemAutotools {
		a := autotools.New(sourceDir, buildDir, installDir).WithRunner(b.Runner).WithOutput(b.Output)
		if triplet != "" {
			a.Host(triplet)
		}
		bs = a
	} else {
		c := cmake.New(sourceDir, buildDir, installDir).WithRunner(b.Runner).WithOutput(b.Output)
		if b.CMakeGenerator != "" {
			c.Generator(b.CMakeGenerator)
		}
		if settings.BuildType != "" {
			c.BuildType(settings.BuildType)
		}
		switch {
		case prof.Toolchain != "":
			c.Toolchain(prof.Toolchain)
		case target.OS == "macos" && host.OS == "macos":
			c.Define("CMAKE_OSX_ARCHITECTURES", buildsys.AppleArch(target.Arch))
		case cross:
			c.Define("CMAKE_SYSTEM_NAME", buildsys.SystemName(target.OS))
			c.Define("CMAKE_SYSTEM_PROCESSOR", buildsys.Processor(target.Arch))
		}
		bs = c
	}
	for _, k := range sortedKeys(prof.Env) {
		bs.Env(k, prof.Env[k])
	}
	for _, k := range sortedKeys(ccEnv) {
		bs.Env(k, ccEnv[k])
	}
	return bs, nil
}

// compilerEnv returns the CC and CXX the compiler setting selects. A
// profile that already names drivers of the same family keeps them; one
// naming another family is overridden so the package is built by the
// compiler it is recorded under.
func compilerEnv(compiler, triplet string, env map[string]string, log logrus.FieldLogger) (map[string]string, error) {
	if compiler == "" {
		return nil, nil
	}
	cc, cxx, ok := buildsys.CompilerDrivers(compiler, triplet)
	if !ok {
		if env["CC"] != "" {
			return nil, nil
		}
		return nil, fmt.Errorf("compiler %s: %w", compiler, ErrUnknownCompiler)
	}
	family := buildsys.CompilerFamily(compiler)
	out := make(map[string]string, 2)
	for _, v := range [][2]string{{"CC", cc}, {"CXX", cxx}} {
		key, driver := v[0], v[1]
		cur, set := env[key]
		if set && buildsys.DriverFamily(cur) == family && strings.Contains(cur, triplet) {
			continue
		}
		if set {
			log.WithFields(logrus.Fields{"var": key, "profile": cur, "compiler": compiler}).
				Warn("profile compiler does not match the compiler setting, overriding")
		}
		out[key] = driver
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
