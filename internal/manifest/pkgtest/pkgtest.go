// Package pkgtest builds component packages for tests.
package pkgtest

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/plugmgr/plugmgr/internal/manifest"
)

// Manifest renders d as manifest YAML.
func Manifest(t testing.TB, d manifest.Descriptor) string {
	t.Helper()
	data, err := yaml.Marshal(d)
	if err != nil {
		t.Fatalf("marshaling manifest: %v", err)
	}
	return string(data)
}

// WritePackage writes a zip archive named file into dir with the given
// entries and returns its path.
func WritePackage(t testing.TB, dir, file string, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, file)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("creating package: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("adding %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing package: %v", err)
	}
	return p
}

// Component writes a package whose component.yaml describes d. The file is
// named after the component.
func Component(t testing.TB, dir string, d manifest.Descriptor) string {
	t.Helper()
	return WritePackage(t, dir, d.Name+".zip", map[string]string{
		"component.yaml": Manifest(t, d),
	})
}
