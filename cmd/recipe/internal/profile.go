package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goplus/recipe/internal/env"
	"github.com/goplus/recipe/internal/profile"
)

var (
	detectName  string
	detectForce bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage build profiles",
}

var profileDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the host toolchain and save it as a profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileDetect,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name|path]",
	Short: "Print a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileShow,
}

func init() {
	profileDetectCmd.Flags().StringVar(&detectName, "name", profile.DefaultName, "Profile name")
	profileDetectCmd.Flags().BoolVarP(&detectForce, "force", "f", false, "Overwrite an existing profile")
	profileCmd.AddCommand(profileDetectCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileDetect(cmd *cobra.Command, args []string) error {
	dir, err := env.ProfilesDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, detectName+".yaml")
	if _, err := os.Stat(path); err == nil && !detectForce {
		return fmt.Errorf("profile %s already exists, use --force to overwrite", detectName)
	}
	p, err := profile.Detect()
	if err != nil {
		return err
	}
	p.Name = detectName
	if err := profile.Save(p, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s to %s\n", detectName, path)
	return printProfile(cmd, p)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	p, err := loadProfile(name, nil)
	if err != nil {
		return err
	}
	return printProfile(cmd, p)
}

func printProfile(cmd *cobra.Command, p *profile.Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
