package internal

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goplus/recipe/internal/build"
	"github.com/goplus/recipe/internal/deps"
	"github.com/goplus/recipe/internal/env"
	"github.com/goplus/recipe/internal/pkgcache"
	"github.com/goplus/recipe/internal/profile"
	"github.com/goplus/recipe/pkgs/buildsys"
	"github.com/goplus/recipe/recipe"
)

// toolRunner runs build tools; nil runs them as child processes.
var toolRunner buildsys.Runner

// buildFlags are shared by the commands that build a package.
type buildFlags struct {
	profile   string
	settings  []string
	options   []string
	depsFile  string
	user      string
	channel   string
	force     bool
	keepBuild bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.profile, "profile", "p", "", "Profile name or file (default from config)")
	fs.StringArrayVarP(&f.settings, "setting", "s", nil, "Override a setting, as axis=value")
	fs.StringArrayVarP(&f.options, "option", "o", nil, "Override an option, as name=value")
	fs.StringVar(&f.depsFile, "deps", "", "Resolve requirements from a YAML or JSON file instead of the package cache")
	fs.StringVar(&f.user, "user", "", "User the package is published under")
	fs.StringVar(&f.channel, "channel", "", "Channel the package is published under")
	fs.BoolVar(&f.force, "force", false, "Rebuild even if the package is cached")
	fs.BoolVar(&f.keepBuild, "keep-build", false, "Keep the temporary build directory")
}

var buildOpts buildFlags

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build a recipe into the package cache",
	Long: `Build configures, compiles and installs the recipe at path (default ".")
for the selected profile and options.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildOpts.register(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	res, err := buildRecipe(cmd, recipePath(args), &buildOpts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", res.Ref, res.Matrix)
	fmt.Fprintf(out, "  package: %s\n", res.PackageDir)
	for _, a := range res.Artifacts {
		fmt.Fprintf(out, "  %-10s %s\n", a.Kind, a.Path)
	}
	return nil
}

func buildRecipe(cmd *cobra.Command, path string, f *buildFlags) (*build.Result, error) {
	r, err := recipe.Load(path)
	if err != nil {
		return nil, err
	}
	prof, err := loadProfile(f.profile, f.settings)
	if err != nil {
		return nil, err
	}
	pkgDir, err := cfg.ResolvePackagesDir()
	if err != nil {
		return nil, err
	}

	b := &build.Builder{
		Cache:          pkgcache.New(pkgDir),
		Runner:         toolRunner,
		Logger:         logrus.StandardLogger(),
		CMakeGenerator: cfg.CMakeGenerator,
		KeepBuildDir:   f.keepBuild || cfg.KeepBuildDir,
	}
	if verbose {
		b.Output = cmd.ErrOrStderr()
	}
	req := build.Request{
		Recipe:  r,
		Profile: prof,
		Options: f.options,
		User:    f.user,
		Channel: f.channel,
		Force:   f.force,
	}
	if f.depsFile != "" {
		resolver, err := deps.LoadFile(f.depsFile)
		if err != nil {
			return nil, err
		}
		req.Resolver = resolver
	}
	return b.Build(context.Background(), req)
}

func loadProfile(nameOrPath string, settings []string) (*profile.Profile, error) {
	if nameOrPath == "" {
		nameOrPath = cfg.DefaultProfile
	}
	dir, err := env.ProfilesDir()
	if err != nil {
		return nil, err
	}
	prof, err := profile.Resolve(nameOrPath, dir)
	if err != nil {
		return nil, err
	}
	var override recipe.Settings
	for _, kv := range settings {
		if err := profile.ParseSetting(&override, kv); err != nil {
			return nil, err
		}
	}
	return prof.Merge(override), nil
}
