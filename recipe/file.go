package recipe

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the conventional name of a recipe file.
const FileName = "recipe.yaml"

// Parse reads and declares a recipe from either provided data or a file path.
// If data is non-nil, it is used directly and the file parameter is only
// used to set Recipe.Dir. Otherwise, the file is read from the provided path.
func Parse(file string, data []byte) (*Recipe, error) {
	var reader io.Reader

	if data != nil {
		reader = bytes.NewReader(data)
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		reader = f
	}

	var decl Declaration
	dec := yaml.NewDecoder(reader)
	dec.KnownFields(true)
	if err := dec.Decode(&decl); err != nil {
		if err == io.EOF {
			return nil, declErr("name", "", ErrMissingField)
		}
		return nil, &DeclarationError{Field: filepath.Base(file), Err: err}
	}

	r, err := Declare(decl)
	if err != nil {
		return nil, err
	}
	if file != "" {
		r.Dir = filepath.Dir(file)
	}
	return r, nil
}

// Load loads the recipe at path. A directory is searched for FileName.
func Load(path string) (*Recipe, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		path = filepath.Join(path, FileName)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(abs, nil)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return r, nil
}

// Marshal encodes the declaration of r as YAML.
func Marshal(r *Recipe) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r.Declaration()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
