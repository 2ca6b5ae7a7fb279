package generator

import (
	"fmt"
	"path/filepath"
	"strings"
)

type cmakeGen struct{}

func (cmakeGen) Name() string     { return "cmake" }
func (cmakeGen) Filename() string { return "buildinfo.cmake" }

func (cmakeGen) Generate(in *Input) ([]byte, error) {
	var b strings.Builder
	b.WriteString(header(in, "#"))
	b.WriteString("\n")

	meta := in.Recipe.Metadata()
	setVar(&b, "RECIPE_PACKAGE_NAME", quote(meta.Name))
	setVar(&b, "RECIPE_PACKAGE_VERSION", quote(meta.Version))
	for _, axis := range in.Recipe.SettingAxes() {
		setVar(&b, "RECIPE_SETTINGS_"+varName(axis), quote(in.Settings.Get(axis)))
	}
	shared := "OFF"
	if in.Options.Shared {
		shared = "ON"
	}
	setVar(&b, "RECIPE_SHARED", shared)
	b.WriteString("\n")

	names := make([]string, 0, len(in.Deps.Deps))
	for _, d := range in.Deps.Deps {
		n := varName(d.Ref.Name)
		names = append(names, d.Ref.Name)
		setVar(&b, "RECIPE_"+n+"_ROOT", quote(slash(d.RootDir)))
		setVar(&b, "RECIPE_INCLUDE_DIRS_"+n, quoteAll(slashAll(d.IncludeDirs)))
		setVar(&b, "RECIPE_LIB_DIRS_"+n, quoteAll(slashAll(d.LibDirs)))
		setVar(&b, "RECIPE_BIN_DIRS_"+n, quoteAll(slashAll(d.BinDirs)))
		setVar(&b, "RECIPE_LIBS_"+n, quoteAll(d.Libs))
		setVar(&b, "RECIPE_DEFINES_"+n, quoteAll(prefixAll("-D", d.Defines)))
		b.WriteString("\n")
	}

	agg := in.Deps.Aggregated()
	setVar(&b, "RECIPE_DEPENDENCIES", quoteAll(names))
	setVar(&b, "RECIPE_INCLUDE_DIRS", quoteAll(slashAll(agg.IncludeDirs)))
	setVar(&b, "RECIPE_LIB_DIRS", quoteAll(slashAll(agg.LibDirs)))
	setVar(&b, "RECIPE_BIN_DIRS", quoteAll(slashAll(agg.BinDirs)))
	setVar(&b, "RECIPE_LIBS", quoteAll(agg.Libs))
	setVar(&b, "RECIPE_DEFINES", quoteAll(prefixAll("-D", agg.Defines)))
	setVar(&b, "RECIPE_C_FLAGS", quote(strings.Join(agg.CFlags, " ")))
	setVar(&b, "RECIPE_CXX_FLAGS", quote(strings.Join(agg.CXXFlags, " ")))
	setVar(&b, "RECIPE_LINKER_FLAGS", quote(strings.Join(agg.LinkFlags, " ")))
	setVar(&b, "RECIPE_ROOTS", quoteAll(slashAll(in.Deps.RootDirs())))

	b.WriteString(`
macro(recipe_basic_setup)
    include_directories(${RECIPE_INCLUDE_DIRS})
    link_directories(${RECIPE_LIB_DIRS})
    add_definitions(${RECIPE_DEFINES})
    list(PREPEND CMAKE_PREFIX_PATH ${RECIPE_ROOTS})
    set(CMAKE_C_FLAGS "${RECIPE_C_FLAGS} ${CMAKE_C_FLAGS}")
    set(CMAKE_CXX_FLAGS "${RECIPE_CXX_FLAGS} ${CMAKE_CXX_FLAGS}")
    set(CMAKE_EXE_LINKER_FLAGS "${RECIPE_LINKER_FLAGS} ${CMAKE_EXE_LINKER_FLAGS}")
    set(CMAKE_SHARED_LINKER_FLAGS "${RECIPE_LINKER_FLAGS} ${CMAKE_SHARED_LINKER_FLAGS}")
    set(BUILD_SHARED_LIBS ${RECIPE_SHARED})
endmacro()

macro(recipe_target_link target)
    target_link_libraries(${target} ${RECIPE_LIBS})
endmacro()
`)
	return []byte(b.String()), nil
}

func setVar(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "set(%s %s)\n", name, value)
}

// varName upper-cases s and replaces everything but letters and digits
// with underscores.
func varName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, s)
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)
	return `"` + r.Replace(s) + `"`
}

func quoteAll(vals []string) string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = quote(v)
	}
	return strings.Join(out, " ")
}

func slash(p string) string { return filepath.ToSlash(p) }

func slashAll(ps []string) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = slash(p)
	}
	return out
}

func prefixAll(prefix string, vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = prefix + v
	}
	return out
}
