package internal

import (
	"github.com/spf13/cobra"

	"github.com/goplus/recipe/recipe"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Print a validated recipe",
	Long:  `Inspect loads the recipe at path (default ".") and prints its normalized declaration.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	r, err := recipe.Load(recipePath(args))
	if err != nil {
		return err
	}
	data, err := recipe.Marshal(r)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func recipePath(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
