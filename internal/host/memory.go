package host

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/plugmgr/plugmgr/internal/manifest"
)

// Op names a registry transition.
type Op string

const (
	OpEnable  Op = "enable"
	OpDisable Op = "disable"
	OpInstall Op = "install"
)

// Event is one journaled transition.
type Event struct {
	Op   Op
	Name string
}

func (e Event) String() string {
	return string(e.Op) + " " + e.Name
}

// Guard is consulted before every transition. A non-nil error aborts the
// transition and is returned to the caller.
type Guard func(op Op, name string) error

// Describer reads the descriptor of a package file.
type Describer func(path string) (*manifest.Descriptor, error)

// MemoryOption configures a Memory registry.
type MemoryOption func(*Memory)

// WithGuard installs a guard on every transition.
func WithGuard(g Guard) MemoryOption {
	return func(m *Memory) {
		m.guard = g
	}
}

// WithDescriber overrides how Install reads package descriptors. The default
// is manifest.ReadPackage.
func WithDescriber(d Describer) MemoryOption {
	return func(m *Memory) {
		m.describe = d
	}
}

// WithDataRoot sets the parent of the DataDir given to installed components.
func WithDataRoot(dir string) MemoryOption {
	return func(m *Memory) {
		m.dataRoot = dir
	}
}

// Memory is an in-process Registry. Successful transitions are appended to a
// journal that can be inspected with Journal.
type Memory struct {
	components cmap.ConcurrentMap[string, *Component]
	enabled    cmap.ConcurrentMap[string, bool]

	describe Describer
	dataRoot string

	mu      sync.Mutex
	guard   Guard
	journal []Event
}

// NewMemory returns an empty registry.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		components: cmap.New[*Component](),
		enabled:    cmap.New[bool](),
		describe:   manifest.ReadPackage,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add registers d directly, without a package file. It replaces any
// component with the same name. Add is not journaled.
func (m *Memory) Add(d *manifest.Descriptor, enabled bool) *Component {
	c := &Component{Descriptor: d, DataDir: m.dataDir(d)}
	m.put(c, enabled)
	return c
}

func (m *Memory) put(c *Component, enabled bool) {
	m.components.Set(c.Key(), c)
	m.enabled.Set(c.Key(), enabled)
}

// SetGuard replaces the transition guard. Passing nil removes it.
func (m *Memory) SetGuard(g Guard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guard = g
}

// Journal returns a copy of the transitions recorded so far.
func (m *Memory) Journal() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.journal))
	copy(out, m.journal)
	return out
}

// ResetJournal discards the recorded transitions.
func (m *Memory) ResetJournal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = nil
}

// Components returns every registered component sorted by name.
func (m *Memory) Components() []*Component {
	out := make([]*Component, 0, m.components.Count())
	for _, c := range m.components.Items() {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name()) < strings.ToLower(out[j].Name())
	})
	return out
}

// Lookup finds a component by name, case-insensitively.
func (m *Memory) Lookup(name string) (*Component, bool) {
	return m.components.Get(manifest.NameKey(name))
}

// Enabled reports whether c is enabled. Unknown components are disabled.
func (m *Memory) Enabled(c *Component) bool {
	if c == nil {
		return false
	}
	on, _ := m.enabled.Get(c.Key())
	return on
}

// Enable marks c enabled.
func (m *Memory) Enable(c *Component) error {
	return m.transition(OpEnable, c, true)
}

// Disable marks c disabled.
func (m *Memory) Disable(c *Component) error {
	return m.transition(OpDisable, c, false)
}

func (m *Memory) transition(op Op, c *Component, on bool) error {
	if c == nil || !m.components.Has(c.Key()) {
		return ErrNotInstalled
	}
	if err := m.check(op, c.Name()); err != nil {
		return err
	}
	m.enabled.Set(c.Key(), on)
	m.record(op, c.Name())
	return nil
}

// Install reads the package descriptor, registers the component and
// enables it.
func (m *Memory) Install(path string) (*Component, error) {
	d, err := m.describe(path)
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", path, err)
	}
	if m.components.Has(d.Key()) {
		return nil, fmt.Errorf("installing %s: %w", d.Name, ErrAlreadyInstalled)
	}
	if err := m.check(OpInstall, d.Name); err != nil {
		return nil, err
	}

	c := &Component{Descriptor: d, PackagePath: path, DataDir: m.dataDir(d)}
	if !m.components.SetIfAbsent(d.Key(), c) {
		return nil, fmt.Errorf("installing %s: %w", d.Name, ErrAlreadyInstalled)
	}
	m.enabled.Set(d.Key(), true)
	m.record(OpInstall, d.Name)
	return c, nil
}

func (m *Memory) check(op Op, name string) error {
	m.mu.Lock()
	g := m.guard
	m.mu.Unlock()
	if g == nil {
		return nil
	}
	return g(op, name)
}

func (m *Memory) record(op Op, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = append(m.journal, Event{Op: op, Name: name})
}

func (m *Memory) dataDir(d *manifest.Descriptor) string {
	if m.dataRoot == "" {
		return ""
	}
	return filepath.Join(m.dataRoot, d.Name)
}
