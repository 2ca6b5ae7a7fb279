package generator

import (
	"strings"

	"github.com/goplus/recipe/recipe"
)

type compilerArgsGen struct{}

func (compilerArgsGen) Name() string     { return "compiler_args" }
func (compilerArgsGen) Filename() string { return "buildinfo.args" }

// Generate renders a single line of compiler and linker arguments in the
// dialect of the profile's compiler.
func (compilerArgsGen) Generate(in *Input) ([]byte, error) {
	agg := in.Deps.Aggregated()
	msvc := in.Settings.Compiler == "msvc"

	var args []string
	args = append(args, buildTypeFlags(in.Settings, msvc)...)
	args = append(args, archFlags(in.Settings, msvc)...)
	for _, d := range agg.Defines {
		if msvc {
			args = append(args, "/D"+d)
		} else {
			args = append(args, "-D"+d)
		}
	}
	for _, dir := range agg.IncludeDirs {
		if msvc {
			args = append(args, argQuote("/I"+dir))
		} else {
			args = append(args, argQuote("-I"+dir))
		}
	}
	args = append(args, agg.CFlags...)
	args = append(args, agg.CXXFlags...)
	if msvc {
		args = append(args, "/link")
	}
	for _, dir := range agg.LibDirs {
		if msvc {
			args = append(args, argQuote("/LIBPATH:"+dir))
		} else {
			args = append(args, argQuote("-L"+dir))
		}
	}
	if !msvc && in.Settings.OS != "windows" {
		for _, dir := range agg.LibDirs {
			args = append(args, argQuote("-Wl,-rpath,"+dir))
		}
	}
	for _, lib := range agg.Libs {
		if msvc {
			args = append(args, lib+".lib")
		} else {
			args = append(args, "-l"+lib)
		}
	}
	args = append(args, agg.LinkFlags...)
	return []byte(strings.Join(args, " ") + "\n"), nil
}

func buildTypeFlags(s recipe.Settings, msvc bool) []string {
	switch s.BuildType {
	case "Debug":
		if msvc {
			return []string{"/Zi", "/Ob0", "/Od"}
		}
		return []string{"-g"}
	case "Release":
		if msvc {
			return []string{"/O2", "/Ob2", "/DNDEBUG"}
		}
		return []string{"-O3", "-DNDEBUG"}
	case "RelWithDebInfo":
		if msvc {
			return []string{"/Zi", "/O2", "/Ob1", "/DNDEBUG"}
		}
		return []string{"-O2", "-g", "-DNDEBUG"}
	case "MinSizeRel":
		if msvc {
			return []string{"/O1", "/Ob1", "/DNDEBUG"}
		}
		return []string{"-Os", "-DNDEBUG"}
	}
	return nil
}

func archFlags(s recipe.Settings, msvc bool) []string {
	if msvc || s.OS == "macos" && s.Arch == "armv8" {
		return nil
	}
	switch s.Arch {
	case "x86_64":
		return []string{"-m64"}
	case "x86":
		return []string{"-m32"}
	}
	return nil
}

// argQuote double-quotes arguments containing spaces.
func argQuote(arg string) string {
	if strings.ContainsAny(arg, " \t") {
		return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
	}
	return arg
}
