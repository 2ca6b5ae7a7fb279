package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goplus/recipe/internal/archive"
	"github.com/goplus/recipe/internal/signer"
)

// passphraseEnv holds the passphrase of an encrypted signing key.
const passphraseEnv = "RECIPE_SIGN_PASSPHRASE"

var (
	exportOpts   buildFlags
	exportOutput string
	exportKey    string
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Pack a built package into an archive",
	Long: `Export builds the recipe at path if it is not cached yet and packs the
installed package into a .zip, .tar.gz, .tar.xz or .tar.zst archive,
optionally with an OpenPGP detached signature.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportOpts.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "O", "", "Archive to write (format from extension)")
	exportCmd.Flags().StringVar(&exportKey, "sign-key", "", "OpenPGP private key to sign the archive with ($"+passphraseEnv+" decrypts it)")
	exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if _, err := archive.FormatOf(exportOutput); err != nil {
		return err
	}
	out, err := filepath.Abs(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	// Load the key before building so a bad key fails fast.
	var s *signer.Signer
	if exportKey != "" {
		if s, err = signer.Load(exportKey, os.Getenv(passphraseEnv)); err != nil {
			return err
		}
	}

	res, err := buildRecipe(cmd, recipePath(args), &exportOpts)
	if err != nil {
		return err
	}
	if err := archive.Create(out, res.PackageDir); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if s != nil {
		sigPath, err := s.SignFile(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sigPath)
	}
	return nil
}
