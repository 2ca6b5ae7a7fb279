package generator

import (
	"fmt"
	"strings"
)

type txtGen struct{}

func (txtGen) Name() string     { return "txt" }
func (txtGen) Filename() string { return "buildinfo.txt" }

// Generate renders an INI-like manifest: aggregated sections first, then
// one set of sections per dependency, then settings and options.
func (txtGen) Generate(in *Input) ([]byte, error) {
	var b strings.Builder
	b.WriteString(header(in, "#"))

	agg := in.Deps.Aggregated()
	section(&b, "includedirs", agg.IncludeDirs)
	section(&b, "libdirs", agg.LibDirs)
	section(&b, "bindirs", agg.BinDirs)
	section(&b, "libs", agg.Libs)
	section(&b, "defines", agg.Defines)
	section(&b, "cflags", agg.CFlags)
	section(&b, "cxxflags", agg.CXXFlags)
	section(&b, "linkflags", agg.LinkFlags)

	for _, d := range in.Deps.Deps {
		n := d.Ref.Name
		section(&b, "rootpath_"+n, []string{d.RootDir})
		section(&b, "reference_"+n, []string{d.Ref.String()})
		section(&b, "includedirs_"+n, d.IncludeDirs)
		section(&b, "libdirs_"+n, d.LibDirs)
		section(&b, "bindirs_"+n, d.BinDirs)
		section(&b, "libs_"+n, d.Libs)
		section(&b, "defines_"+n, d.Defines)
	}

	var settings []string
	for _, axis := range in.Recipe.SettingAxes() {
		settings = append(settings, axis+"="+in.Settings.Get(axis))
	}
	section(&b, "settings", settings)
	section(&b, "options", []string{fmt.Sprintf("shared=%t", in.Options.Shared)})

	meta := in.Recipe.Metadata()
	section(&b, "package", []string{
		"name=" + meta.Name,
		"version=" + meta.Version,
		"license=" + meta.License,
	})
	return []byte(b.String()), nil
}

func section(b *strings.Builder, name string, lines []string) {
	fmt.Fprintf(b, "\n[%s]\n", name)
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
}
