package manifest

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
)

// ManifestNames lists the archive entries searched for a manifest, in
// preference order.
var ManifestNames = []string{"component.yaml", "component.yml", "plugin.yml"}

// maxManifestSize bounds how much of a manifest entry is read.
const maxManifestSize = 1 << 20

// ReadPackage opens a component package and parses the manifest at its
// root. A package without a recognised manifest yields a *DescriptorError
// wrapping ErrNoManifest.
func ReadPackage(pkgPath string) (*Descriptor, error) {
	zr, err := zip.OpenReader(pkgPath)
	if err != nil {
		return nil, &DescriptorError{Origin: pkgPath, Err: fmt.Errorf("opening package: %w", err)}
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[path.Clean(f.Name)] = f
	}

	for _, name := range ManifestNames {
		f, ok := entries[name]
		if !ok {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, &DescriptorError{Origin: pkgPath, Err: err}
		}
		return Parse(data, pkgPath+"!"+name)
	}
	return nil, &DescriptorError{Origin: pkgPath, Err: ErrNoManifest}
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxManifestSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if len(data) > maxManifestSize {
		return nil, errors.New(f.Name + " exceeds the manifest size limit")
	}
	return data, nil
}
