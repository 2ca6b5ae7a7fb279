package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkDirOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(HomeEnv, tempDir)

	dir, err := WorkDir()
	if err != nil {
		t.Fatalf("WorkDir() returned error: %v", err)
	}
	if dir != tempDir {
		t.Errorf("WorkDir() = %q, want %q", dir, tempDir)
	}
}

func TestWorkDirDefault(t *testing.T) {
	t.Setenv(HomeEnv, "")

	dir, err := WorkDir()
	if err != nil {
		t.Fatalf("WorkDir() returned error: %v", err)
	}
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		t.Fatalf("os.UserCacheDir() returned error: %v", err)
	}
	if want := filepath.Join(userCacheDir, ".recipe"); dir != want {
		t.Errorf("WorkDir() = %q, want %q", dir, want)
	}
}

func TestPackagesDir(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(HomeEnv, tempDir)

	dir, err := PackagesDir()
	if err != nil {
		t.Fatalf("PackagesDir() returned error: %v", err)
	}
	if want := filepath.Join(tempDir, "packages"); dir != want {
		t.Errorf("PackagesDir() = %q, want %q", dir, want)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("PackagesDir() created a file instead of a directory")
	}
	if mode := info.Mode().Perm(); mode != 0700 {
		t.Errorf("Directory has permissions %v, want %v", mode, os.FileMode(0700))
	}

	// Idempotent.
	again, err := PackagesDir()
	if err != nil || again != dir {
		t.Errorf("second PackagesDir() = %q, %v; want %q", again, err, dir)
	}
}

func TestProfilesDirAndConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(HomeEnv, tempDir)

	dir, err := ProfilesDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(tempDir, "profiles"); dir != want {
		t.Errorf("ProfilesDir() = %q, want %q", dir, want)
	}
	file, err := ConfigFile()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(tempDir, "config.yaml"); file != want {
		t.Errorf("ConfigFile() = %q, want %q", file, want)
	}
}
