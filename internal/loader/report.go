package loader

import (
	"github.com/plugmgr/plugmgr/internal/manifest"
	"github.com/plugmgr/plugmgr/internal/resolver"
)

// ItemStatus is the install status of one package in the resolved order.
type ItemStatus string

const (
	ItemSkipped      ItemStatus = "skipped"
	ItemInstalled    ItemStatus = "installed"
	ItemFailed       ItemStatus = "failed"
	ItemNotAttempted ItemStatus = "not-attempted"
)

// Item is one entry of the install sequence.
type Item struct {
	Name string
	// Path is the package file in the packages directory. It is set only
	// for installed items; other packages are never placed there.
	Path   string
	Status ItemStatus
	Err    error
}

// SkippedSource is an extra source that could not be used.
type SkippedSource struct {
	Source string
	Err    error
}

// Report describes what a load did. It is returned even when Load fails,
// holding whatever was learned before the failure.
type Report struct {
	Primary      *manifest.Descriptor
	Items        []Item
	Skipped      []SkippedSource
	BrokenCycles []resolver.Edge
}

// Installed returns the names of the packages that were installed, in order.
func (r *Report) Installed() []string {
	return r.namesWith(ItemInstalled)
}

// AlreadyInstalled returns the names that were skipped because the host
// already had them.
func (r *Report) AlreadyInstalled() []string {
	return r.namesWith(ItemSkipped)
}

func (r *Report) namesWith(status ItemStatus) []string {
	var out []string
	for _, it := range r.Items {
		if it.Status == status {
			out = append(out, it.Name)
		}
	}
	return out
}
