package build

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/goplus/recipe/recipe"
)

// stageSources copies the files matched by the recipe's exports_sources
// from the recipe directory into dst, keeping relative paths.
func stageSources(r *recipe.Recipe, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	if len(r.ExportsSources()) == 0 {
		return nil
	}
	if r.Dir == "" {
		return errors.New("recipe has exports_sources but no directory")
	}
	files, err := r.SourceFiles(os.DirFS(r.Dir))
	if err != nil {
		return err
	}
	for _, name := range files {
		if err := copyFile(filepath.Join(r.Dir, filepath.FromSlash(name)), filepath.Join(dst, filepath.FromSlash(name))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
