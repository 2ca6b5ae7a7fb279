package internal

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goplus/recipe/internal/build"
	"github.com/goplus/recipe/internal/config"
)

var (
	verbose    bool
	configPath string

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "recipe",
	Short: "recipe builds C and C++ packages from declarative recipes",
	Long: `recipe reads a recipe.yaml describing a package, its settings, options,
pinned dependencies and generators, and builds it with CMake or Autotools
into the local package cache.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		if verbose || cfg.Verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default $RECIPE_HOME/config.yaml)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var be *build.Error
		if errors.As(err, &be) && len(be.Output) > 0 && !verbose {
			os.Stderr.Write(be.Output)
		}
		logrus.Fatal(err)
	}
}
