package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/plugmgr/plugmgr/internal/fetch"
	"github.com/plugmgr/plugmgr/internal/manifest"
	"github.com/plugmgr/plugmgr/internal/resolver"
	"github.com/plugmgr/plugmgr/internal/userdata"
)

// stagingPattern names the per-load directory inside the packages
// directory. The host only registers *.zip files at the top level, so
// nothing under it is installed until promote moves it out.
const stagingPattern = ".staging-*"

// downloadName returns the packages-directory name for a downloaded package.
func downloadName() string {
	return "downloaded-" + uuid.NewString() + ".zip"
}

// staging holds the packages one load has acquired but not installed.
type staging struct {
	dir      string
	packages string
	// names maps a staged file to the name it should get in the packages
	// directory.
	names map[string]string
	log   logr.Logger
}

func newStaging(packagesDir string, log logr.Logger) (*staging, error) {
	if err := os.MkdirAll(packagesDir, userdata.DirPermNormal); err != nil {
		return nil, fmt.Errorf("creating packages directory: %w", err)
	}
	dir, err := os.MkdirTemp(packagesDir, stagingPattern)
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &staging{
		dir:      dir,
		packages: packagesDir,
		names:    make(map[string]string),
		log:      log,
	}, nil
}

// reserve returns a unique staging path for a package that should end up in
// the packages directory as name.
func (s *staging) reserve(name string) string {
	path := filepath.Join(s.dir, uuid.NewString()+".zip")
	s.names[path] = name
	return path
}

// promote moves a staged package into the packages directory and reports
// whether it moved anything. Paths that were never staged already live in
// the packages directory and are returned unchanged. A name taken by
// another file gets a suffix rather than replacing that file.
func (s *staging) promote(path string) (string, bool, error) {
	name, ok := s.names[path]
	if !ok {
		return path, false, nil
	}
	dest := filepath.Join(s.packages, name)
	if _, err := os.Lstat(dest); err == nil {
		ext := filepath.Ext(name)
		dest = filepath.Join(s.packages, strings.TrimSuffix(name, ext)+"-"+uuid.NewString()[:8]+ext)
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("checking %s: %w", dest, err)
	}
	if err := os.Rename(path, dest); err != nil {
		return "", false, fmt.Errorf("moving %s into %s: %w", name, s.packages, err)
	}
	delete(s.names, path)
	s.log.V(1).Info("promoted package", "path", dest)
	return dest, true, nil
}

// discard removes everything that was staged and not promoted.
func (s *staging) discard() {
	if err := os.RemoveAll(s.dir); err != nil {
		s.log.Error(err, "removing staging directory", "dir", s.dir)
	}
}

// acquire turns a source into a described candidate. The candidate's path
// is either a staged copy or a file already in the packages directory.
func (p *Pipeline) acquire(st *staging, source string) (resolver.Candidate, error) {
	path, err := p.fetchOrLocate(st, source)
	if err != nil {
		return resolver.Candidate{}, err
	}
	d, err := manifest.ReadPackage(path)
	if err != nil {
		return resolver.Candidate{}, &Error{Kind: KindDescribe, Source: source, Err: err}
	}
	return resolver.Candidate{Descriptor: d, Path: path}, nil
}

func (p *Pipeline) fetchOrLocate(st *staging, source string) (string, error) {
	if fetch.IsURL(source) {
		if !p.policy.AllowURL {
			return "", &Error{Kind: KindPolicy, Source: source, Err: ErrURLSourcesDisabled}
		}
		dest := st.reserve(downloadName())
		n, err := p.fetcher.Download(source, dest)
		if err != nil {
			return "", &Error{Kind: KindAcquisition, Source: source, Err: err}
		}
		p.log.V(1).Info("downloaded package", "url", source, "path", dest, "bytes", n)
		return dest, nil
	}

	if !p.policy.AllowLocal {
		return "", &Error{Kind: KindPolicy, Source: source, Err: ErrLocalSourcesDisabled}
	}
	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.policy.PackagesDir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", &Error{Kind: KindAcquisition, Source: source, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &Error{Kind: KindAcquisition, Source: source, Err: fmt.Errorf("%s: %w", path, ErrNotRegularFile)}
	}

	dest, err := p.stageLocal(st, path)
	if err != nil {
		return "", &Error{Kind: KindAcquisition, Source: source, Err: err}
	}
	return dest, nil
}

// stageLocal copies a local package into staging unless it already sits in
// the packages directory.
func (p *Pipeline) stageLocal(st *staging, path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	absDir, err := filepath.Abs(p.policy.PackagesDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p.policy.PackagesDir, err)
	}
	if filepath.Dir(absPath) == absDir {
		return absPath, nil
	}

	dest := st.reserve(filepath.Base(absPath))
	if err := copyFile(absPath, dest); err != nil {
		return "", fmt.Errorf("staging %s: %w", path, err)
	}
	p.log.V(1).Info("staged package", "from", absPath, "to", dest)
	return dest, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, srcInfo.Mode())
}
