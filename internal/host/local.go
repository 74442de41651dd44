package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-logr/logr"
	"go.yaml.in/yaml/v3"

	"github.com/plugmgr/plugmgr/internal/manifest"
	"github.com/plugmgr/plugmgr/internal/userdata"
)

// ErrHostComponent is returned when a transition targets the hosting
// component itself.
var ErrHostComponent = errors.New("the hosting component cannot change state")

// LocalOptions configures OpenLocal.
type LocalOptions struct {
	PackagesDir string
	DataRoot    string
	StatePath   string
	// Self describes the hosting component. It is registered as always
	// enabled and has no package file.
	Self *manifest.Descriptor
	Log  logr.Logger
}

// state is the on-disk record of which components are disabled. Everything
// discovered and not listed is enabled.
type state struct {
	Disabled []string `yaml:"disabled"`
}

// Local is a Registry backed by a packages directory. Each *.zip file in the
// directory is one component; disabled components are persisted to the state
// file so the next invocation sees the same registry.
type Local struct {
	*Memory
	opts    LocalOptions
	selfKey string
	skipped map[string]error
}

// OpenLocal scans the packages directory and applies the saved state.
// Packages that cannot be described, or that repeat an earlier name, are
// skipped and reported by Skipped.
func OpenLocal(opts LocalOptions) (*Local, error) {
	if opts.Log.GetSink() == nil {
		opts.Log = logr.Discard()
	}
	l := &Local{
		Memory:  NewMemory(WithDataRoot(opts.DataRoot)),
		opts:    opts,
		skipped: make(map[string]error),
	}

	if opts.Self != nil {
		l.selfKey = opts.Self.Key()
		l.put(&Component{Descriptor: opts.Self}, true)
	}

	st, err := readState(opts.StatePath)
	if err != nil {
		return nil, err
	}
	disabled := make(map[string]bool, len(st.Disabled))
	for _, name := range st.Disabled {
		disabled[manifest.NameKey(name)] = true
	}

	paths, err := filepath.Glob(filepath.Join(opts.PackagesDir, "*.zip"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", opts.PackagesDir, err)
	}
	for _, p := range paths {
		d, err := manifest.ReadPackage(p)
		if err != nil {
			l.skip(p, err)
			continue
		}
		if _, exists := l.Lookup(d.Name); exists {
			l.skip(p, fmt.Errorf("%s: %w", d.Name, ErrAlreadyInstalled))
			continue
		}
		l.put(&Component{
			Descriptor:  d,
			PackagePath: p,
			DataDir:     l.dataDir(d),
		}, !disabled[d.Key()])
	}

	opts.Log.V(1).Info("registry opened", "packages", opts.PackagesDir, "components", l.components.Count(), "skipped", len(l.skipped))
	return l, nil
}

// Skipped returns the packages that were not registered, keyed by path.
func (l *Local) Skipped() map[string]error {
	out := make(map[string]error, len(l.skipped))
	for k, v := range l.skipped {
		out[k] = v
	}
	return out
}

// Enable marks c enabled and saves the state file.
func (l *Local) Enable(c *Component) error {
	if err := l.refuseSelf(c); err != nil {
		return err
	}
	if err := l.Memory.Enable(c); err != nil {
		return err
	}
	return l.save()
}

// Disable marks c disabled and saves the state file.
func (l *Local) Disable(c *Component) error {
	if err := l.refuseSelf(c); err != nil {
		return err
	}
	if err := l.Memory.Disable(c); err != nil {
		return err
	}
	return l.save()
}

// Install registers the package at path, which should already live in the
// packages directory, and saves the state file.
func (l *Local) Install(path string) (*Component, error) {
	c, err := l.Memory.Install(path)
	if err != nil {
		return nil, err
	}
	if err := l.save(); err != nil {
		return c, err
	}
	return c, nil
}

func (l *Local) refuseSelf(c *Component) error {
	if c != nil && l.selfKey != "" && c.Key() == l.selfKey {
		return ErrHostComponent
	}
	return nil
}

func (l *Local) skip(path string, err error) {
	l.skipped[path] = err
	l.opts.Log.Error(err, "skipping package", "path", path)
}

func (l *Local) save() error {
	var st state
	for _, c := range l.Components() {
		if c.Key() != l.selfKey && !l.Enabled(c) {
			st.Disabled = append(st.Disabled, c.Name())
		}
	}
	sort.Strings(st.Disabled)
	return writeState(l.opts.StatePath, st)
}

func readState(path string) (state, error) {
	var st state
	if path == "" {
		return st, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("reading state %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parsing state %s: %w", path, err)
	}
	return st, nil
}

func writeState(path string, st state) error {
	if path == "" {
		return nil
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(path, data, userdata.FilePermNormal); err != nil {
		return fmt.Errorf("writing state %s: %w", path, err)
	}
	return nil
}
