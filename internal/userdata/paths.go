package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugmgr/plugmgr/internal/branding"
)

// Layout below the home root.
const (
	PackagesDir = "packages"
	DataDir     = "data"
	StateFile   = "state.yaml"
)

const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// GetHomeRoot returns $PLUGMGR_HOME, or ~/.plugmgr when it is unset.
func GetHomeRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("home")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// GetPackagesDir returns $PLUGMGR_PACKAGES, or <home>/packages.
func GetPackagesDir() (string, error) {
	return underHome("packages", PackagesDir)
}

// GetDataRoot returns $PLUGMGR_DATA, or <home>/data. Each component's
// working directory is a child named after it.
func GetDataRoot() (string, error) {
	return underHome("data", DataDir)
}

// GetStatePath returns the file recording which components are disabled.
func GetStatePath() (string, error) {
	return underHome("", StateFile)
}

// underHome resolves an env override, when envSuffix names one, before
// falling back to rel under the home root.
func underHome(envSuffix, rel string) (string, error) {
	if envSuffix != "" {
		if v := os.Getenv(branding.EnvVar(envSuffix)); v != "" {
			return v, nil
		}
	}
	root, err := GetHomeRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// EnsureLayout creates the packages and data directories. A non-empty
// packagesDir (config "packages-dir") replaces GetPackagesDir.
func EnsureLayout(packagesDir string) error {
	dirs := make([]string, 0, 2)
	if packagesDir == "" {
		p, err := GetPackagesDir()
		if err != nil {
			return err
		}
		packagesDir = p
	}
	dirs = append(dirs, packagesDir)

	dataRoot, err := GetDataRoot()
	if err != nil {
		return err
	}
	dirs = append(dirs, dataRoot)

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, DirPermNormal); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
