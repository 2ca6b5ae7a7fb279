package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/recipe/pkgs/mod/module"
	"github.com/goplus/recipe/recipe"
)

var newDir string

var newCmd = &cobra.Command{
	Use:   "new <name>/<version>",
	Short: "Scaffold a new recipe",
	Long: `New creates a recipe.yaml, a CMakeLists.txt wired to the generated
buildinfo.cmake and a placeholder source file.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVarP(&newDir, "dir", "d", "", "Directory to create (default ./<name>)")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	ref, err := module.ParseReference(args[0])
	if err != nil {
		return err
	}
	dir := newDir
	if dir == "" {
		dir = ref.Name
	}
	if _, err := os.Stat(filepath.Join(dir, recipe.FileName)); err == nil {
		return fmt.Errorf("%s already exists", filepath.Join(dir, recipe.FileName))
	}

	r, err := recipe.Declare(scaffold(ref))
	if err != nil {
		return err
	}
	data, err := recipe.Marshal(r)
	if err != nil {
		return err
	}
	src := filepath.Join("src", ref.Name)
	files := []struct{ name, content string }{
		{recipe.FileName, string(data)},
		{"CMakeLists.txt", cmakeLists(ref.Name)},
		{src + ".cpp", fmt.Sprintf("#include \"%s.h\"\n\nint %s_version() { return 1; }\n", ref.Name, cIdent(ref.Name))},
		{src + ".h", fmt.Sprintf("#pragma once\n\nint %s_version();\n", cIdent(ref.Name))},
	}
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(f.content), 0644); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created recipe %s in %s\n", ref.Name+"/"+ref.Version, dir)
	return nil
}

func scaffold(ref module.Reference) recipe.Declaration {
	return recipe.Declaration{
		Metadata:       recipe.Metadata{Name: ref.Name, Version: ref.Version},
		Settings:       []string{recipe.AxisOS, recipe.AxisCompiler, recipe.AxisBuildType, recipe.AxisArch},
		Options:        map[string][]bool{recipe.OptShared: {true, false}},
		DefaultOptions: map[string]bool{recipe.OptShared: false},
		ExportsSources: []string{"src/*", "CMakeLists.txt"},
		Generators:     []string{recipe.GenCMake},
	}
}

func cmakeLists(name string) string {
	return fmt.Sprintf(`cmake_minimum_required(VERSION 3.15)
project(%[1]s CXX)

include(${CMAKE_BINARY_DIR}/buildinfo.cmake)
recipe_basic_setup()

add_library(%[1]s src/%[1]s.cpp)
recipe_target_link(%[1]s)
install(TARGETS %[1]s)
install(FILES src/%[1]s.h DESTINATION include)
`, name)
}

// cIdent turns a package name into a C identifier.
func cIdent(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}
