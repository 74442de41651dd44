package host

import (
	"errors"

	"github.com/plugmgr/plugmgr/internal/manifest"
)

var (
	// ErrNotInstalled is returned when a transition targets a component the
	// registry does not know.
	ErrNotInstalled = errors.New("component not installed")

	// ErrAlreadyInstalled is returned by Install when a component with the
	// same name is already registered.
	ErrAlreadyInstalled = errors.New("component already installed")
)

// Component is the host's handle on an installed component. Enabled state is
// not part of the handle; ask the Registry.
type Component struct {
	Descriptor  *manifest.Descriptor
	PackagePath string
	DataDir     string
}

// Name returns the declared component name.
func (c *Component) Name() string {
	return c.Descriptor.Name
}

// Key returns the case-folded component name.
func (c *Component) Key() string {
	return c.Descriptor.Key()
}

// Registry is the host platform's component registry.
type Registry interface {
	// Components returns every installed component, sorted by name.
	Components() []*Component
	// Lookup finds a component by name, case-insensitively.
	Lookup(name string) (*Component, bool)
	Enabled(c *Component) bool
	Enable(c *Component) error
	Disable(c *Component) error
	// Install registers the package at path and enables it.
	Install(path string) (*Component, error)
}

// Descriptors returns the descriptors of every component in reg.
func Descriptors(reg Registry) []*manifest.Descriptor {
	comps := reg.Components()
	out := make([]*manifest.Descriptor, len(comps))
	for i, c := range comps {
		out[i] = c.Descriptor
	}
	return out
}
