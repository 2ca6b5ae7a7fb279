package profile

import (
	"os/exec"
	"runtime"

	"github.com/goplus/recipe/recipe"
)

var lookPath = exec.LookPath

// Detect builds a profile for the host: its OS, architecture, the first
// C/C++ compiler found in PATH and a Release build type.
func Detect() (*Profile, error) {
	return detect(runtime.GOOS, runtime.GOARCH), nil
}

// Host returns the os and arch settings of the machine running the build.
func Host() recipe.Settings {
	return recipe.Settings{OS: osName(runtime.GOOS), Arch: archName(runtime.GOARCH)}
}

func detect(goos, goarch string) *Profile {
	p := &Profile{
		Name: DefaultName,
		Settings: recipe.Settings{
			OS:        osName(goos),
			Arch:      archName(goarch),
			BuildType: "Release",
		},
		Env: map[string]string{},
	}

	switch {
	case goos == "windows" && commandExists("cl"):
		p.Settings.Compiler = "msvc"
	case goos == "darwin" && commandExists("clang"):
		p.Settings.Compiler = "apple-clang"
	case commandExists("gcc"):
		p.Settings.Compiler = "gcc"
		if commandExists("g++") {
			p.Env["CC"], p.Env["CXX"] = "gcc", "g++"
		}
	case commandExists("clang"):
		p.Settings.Compiler = "clang"
		if commandExists("clang++") {
			p.Env["CC"], p.Env["CXX"] = "clang", "clang++"
		}
	}
	return p
}

func osName(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	}
	return goos
}

func archName(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	case "arm64":
		return "armv8"
	case "arm":
		return "armv7"
	}
	return goarch
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := lookPath(cmd)
	return err == nil
}
