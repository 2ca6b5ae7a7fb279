package buildsys

import (
	"path/filepath"
	"strings"
)

var compilerDrivers = map[string][2]string{
	"gcc":         {"gcc", "g++"},
	"clang":       {"clang", "clang++"},
	"apple-clang": {"clang", "clang++"},
	"msvc":        {"cl", "cl"},
}

// CompilerDrivers returns the C and C++ driver commands of a compiler
// setting value. Cross builds with gcc use the target-prefixed drivers.
func CompilerDrivers(compiler, triplet string) (cc, cxx string, ok bool) {
	d, ok := compilerDrivers[compiler]
	if !ok {
		return "", "", false
	}
	if triplet != "" && compiler == "gcc" {
		return triplet + "-gcc", triplet + "-g++", true
	}
	return d[0], d[1], true
}

// CompilerFamily groups compiler setting values that share drivers.
func CompilerFamily(compiler string) string {
	if compiler == "apple-clang" {
		return "clang"
	}
	return compiler
}

// DriverFamily returns the compiler family of a driver command such as
// "/usr/bin/gcc-12" or "aarch64-linux-gnu-g++", or "" if unknown.
func DriverFamily(cmd string) string {
	fields := strings.Fields(cmd)
	for len(fields) > 1 && (fields[0] == "ccache" || fields[0] == "sccache") {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return ""
	}
	base := strings.ToLower(filepath.Base(fields[0]))
	base = strings.TrimSuffix(base, ".exe")
	switch {
	case strings.Contains(base, "clang"):
		return "clang"
	case strings.Contains(base, "gcc"), strings.Contains(base, "g++"):
		return "gcc"
	case base == "cl":
		return "msvc"
	}
	return ""
}

// SystemName returns the CMAKE_SYSTEM_NAME of an os setting value.
func SystemName(os string) string {
	switch os {
	case "linux":
		return "Linux"
	case "macos":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "android":
		return "Android"
	}
	return os
}

// Processor returns the processor name toolchains use for an arch
// setting value.
func Processor(arch string) string {
	switch arch {
	case "x86":
		return "i686"
	case "armv8":
		return "aarch64"
	case "armv7":
		return "arm"
	}
	return arch
}

// AppleArch returns the CMAKE_OSX_ARCHITECTURES value of an arch setting.
func AppleArch(arch string) string {
	switch arch {
	case "armv8":
		return "arm64"
	case "x86":
		return "i386"
	}
	return arch
}

// Triplet returns the GNU target triplet for an os and arch setting.
func Triplet(os, arch string) string {
	cpu := Processor(arch)
	switch os {
	case "linux":
		if cpu == "arm" {
			return "arm-linux-gnueabihf"
		}
		return cpu + "-linux-gnu"
	case "windows":
		return cpu + "-w64-mingw32"
	case "macos":
		return cpu + "-apple-darwin"
	case "android":
		return cpu + "-linux-android"
	}
	return cpu + "-unknown-" + os
}
