package recipe

import (
	"fmt"
	"slices"
	"strings"
)

// Setting axes a recipe may declare.
const (
	AxisOS        = "os"
	AxisCompiler  = "compiler"
	AxisBuildType = "build_type"
	AxisArch      = "arch"
)

var knownAxes = []string{AxisOS, AxisCompiler, AxisBuildType, AxisArch}

var buildTypes = []string{"Debug", "Release", "RelWithDebInfo", "MinSizeRel"}

// Settings holds the resolved value of every setting axis. Values come from
// the build profile passed by the caller, never from the recipe itself.
type Settings struct {
	OS        string `yaml:"os" json:"os"`
	Compiler  string `yaml:"compiler" json:"compiler"`
	BuildType string `yaml:"build_type" json:"build_type"`
	Arch      string `yaml:"arch" json:"arch"`
}

// Get returns the value of axis, or "" for an unknown axis.
func (s Settings) Get(axis string) string {
	switch axis {
	case AxisOS:
		return s.OS
	case AxisCompiler:
		return s.Compiler
	case AxisBuildType:
		return s.BuildType
	case AxisArch:
		return s.Arch
	}
	return ""
}

// Check verifies that every axis in axes has a value made of letters,
// digits, "_", "." and "-", and that build_type, when required, is one
// of the CMake configurations.
func (s Settings) Check(axes []string) error {
	for _, axis := range axes {
		v := s.Get(axis)
		if v == "" {
			return fmt.Errorf("setting %s is not set", axis)
		}
		if i := strings.IndexFunc(v, notValueChar); i >= 0 {
			return fmt.Errorf("setting %s %q: invalid character %q", axis, v, v[i])
		}
		if axis == AxisBuildType && !slices.Contains(buildTypes, v) {
			return fmt.Errorf("setting build_type %q: want one of %v", v, buildTypes)
		}
	}
	return nil
}

func notValueChar(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return false
	case r == '_', r == '.', r == '-':
		return false
	}
	return true
}

// Select returns s with every axis outside axes cleared. Packages record
// only the axes they declare, so consumers are not bound by the rest.
func (s Settings) Select(axes []string) Settings {
	var out Settings
	for _, axis := range axes {
		switch axis {
		case AxisOS:
			out.OS = s.OS
		case AxisCompiler:
			out.Compiler = s.Compiler
		case AxisBuildType:
			out.BuildType = s.BuildType
		case AxisArch:
			out.Arch = s.Arch
		}
	}
	return out
}
