package build

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/goplus/recipe/internal/pkgcache"
)

// scanArtifacts lists the files installed into dir, in lexical order.
// Names in generated are classified as generated files.
func scanArtifacts(dir string, generated []string) ([]pkgcache.Artifact, error) {
	var out []pkgcache.Artifact
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == pkgcache.InfoFile {
			return nil
		}
		if slices.Contains(generated, rel) {
			out = append(out, pkgcache.Artifact{Path: rel, Kind: pkgcache.KindGenerated})
			return nil
		}
		if kind := artifactKind(rel, d); kind != "" {
			out = append(out, pkgcache.Artifact{Path: rel, Kind: kind})
		}
		return nil
	})
	return out, err
}

func artifactKind(rel string, d fs.DirEntry) string {
	base := path.Base(rel)
	switch {
	case strings.HasSuffix(base, ".a"), strings.HasSuffix(base, ".lib"):
		return pkgcache.KindStatic
	case strings.HasSuffix(base, ".so"), strings.Contains(base, ".so."),
		strings.HasSuffix(base, ".dylib"), strings.HasSuffix(base, ".dll"):
		return pkgcache.KindShared
	case strings.HasPrefix(rel, "bin/"):
		if runtime.GOOS == "windows" {
			if strings.HasSuffix(base, ".exe") {
				return pkgcache.KindExecutable
			}
			return ""
		}
		if fi, err := d.Info(); err == nil && fi.Mode().Perm()&0o111 != 0 {
			return pkgcache.KindExecutable
		}
	}
	return ""
}

// hasKind reports whether any artifact is of kind.
func hasKind(artifacts []pkgcache.Artifact, kind string) bool {
	return slices.ContainsFunc(artifacts, func(a pkgcache.Artifact) bool { return a.Kind == kind })
}

// cppInfo derives the consumer view of a package from its layout.
func cppInfo(dir string, artifacts []pkgcache.Artifact) pkgcache.CppInfo {
	var info pkgcache.CppInfo
	isDir := func(name string) bool {
		fi, err := os.Stat(filepath.Join(dir, name))
		return err == nil && fi.IsDir()
	}
	if isDir("include") {
		info.IncludeDirs = []string{"include"}
	}
	if isDir("lib") {
		info.LibDirs = []string{"lib"}
	}
	if isDir("bin") {
		info.BinDirs = []string{"bin"}
	}
	for _, a := range artifacts {
		if a.Kind != pkgcache.KindStatic && a.Kind != pkgcache.KindShared {
			continue
		}
		if name := libName(path.Base(a.Path)); name != "" && !slices.Contains(info.Libs, name) {
			info.Libs = append(info.Libs, name)
		}
	}
	slices.Sort(info.Libs)
	return info
}

// libName strips the platform prefix and suffixes of a library file name:
// libfoo.so.1.2 and foo.lib both give foo. Import libraries of DLLs
// are named by the .lib file.
func libName(base string) string {
	if strings.HasSuffix(base, ".dll") {
		return ""
	}
	if i := strings.Index(base, ".so"); i > 0 && (len(base) == i+3 || base[i+3] == '.') {
		base = base[:i]
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if strings.HasPrefix(base, "lib") && len(base) > 3 {
		base = base[3:]
	}
	return base
}
