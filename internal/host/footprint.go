package host

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Footprint describes what a component occupies on disk.
type Footprint struct {
	PackagePath string
	PackageSize int64
	DataDir     string
	DataExists  bool
	DataFiles   int
	DataSize    int64
}

// Measure stats the package file and walks the data directory of c.
// Missing paths are reported as absent rather than as errors.
func Measure(c *Component) (Footprint, error) {
	fp := Footprint{PackagePath: c.PackagePath, DataDir: c.DataDir}

	if c.PackagePath != "" {
		info, err := os.Stat(c.PackagePath)
		switch {
		case err == nil:
			fp.PackageSize = info.Size()
		case !os.IsNotExist(err):
			return fp, fmt.Errorf("stat %s: %w", c.PackagePath, err)
		}
	}

	if c.DataDir == "" {
		return fp, nil
	}
	if _, err := os.Stat(c.DataDir); err != nil {
		if os.IsNotExist(err) {
			return fp, nil
		}
		return fp, fmt.Errorf("stat %s: %w", c.DataDir, err)
	}
	fp.DataExists = true

	err := filepath.WalkDir(c.DataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		fp.DataFiles++
		fp.DataSize += info.Size()
		return nil
	})
	if err != nil {
		return fp, fmt.Errorf("walking %s: %w", c.DataDir, err)
	}
	return fp, nil
}
