// Package env locates the recipe work directory and its layout:
//
//	WorkDir/
//	  config.yaml
//	  profiles/<name>.yaml
//	  packages/<name>/<version>/<user>/<channel>/
//	    .cache.json
//	    <matrix>/          # installed package
package env

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the work directory when set.
const HomeEnv = "RECIPE_HOME"

// WorkDir returns the root of all recipe state. It does not create it.
func WorkDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return filepath.Abs(dir)
	}
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".recipe"), nil
}

// PackagesDir returns the local package cache, creating it with 0700
// permissions if it doesn't exist.
func PackagesDir() (string, error) {
	return subdir("packages")
}

// ProfilesDir returns the directory holding named build profiles,
// creating it with 0700 permissions if it doesn't exist.
func ProfilesDir() (string, error) {
	return subdir("profiles")
}

// ConfigFile returns the path of the configuration file.
func ConfigFile() (string, error) {
	dir, err := WorkDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func subdir(name string) (string, error) {
	dir, err := WorkDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
