package resolver

import (
	"sort"
	"strings"

	"github.com/plugmgr/plugmgr/internal/manifest"
)

// Candidate is a package that has been acquired and described but not yet
// installed.
type Candidate struct {
	Descriptor *manifest.Descriptor
	Path       string
}

// Key returns the case-folded component name.
func (c Candidate) Key() string {
	if c.Descriptor == nil {
		return ""
	}
	return c.Descriptor.Key()
}

// NameSet is a case-insensitive set of component names.
type NameSet map[string]struct{}

// NewNameSet returns a set holding names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name.
func (s NameSet) Add(name string) {
	s[manifest.NameKey(name)] = struct{}{}
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[manifest.NameKey(name)]
	return ok
}

// Edge is a dependency edge From -> To, using names as declared.
type Edge struct {
	From string
	To   string
}

func (e Edge) String() string {
	return e.From + " -> " + e.To
}

// Order is the result of ResolveInstallOrder.
type Order struct {
	// Candidates in install order: every candidate appears after the
	// candidates it hard-depends on, except across a broken cycle.
	Candidates []Candidate
	// BrokenCycles lists the edges that were not followed because they
	// closed a cycle.
	BrokenCycles []Edge
}

// Names returns the candidate names in install order.
func (o Order) Names() []string {
	names := make([]string, len(o.Candidates))
	for i, c := range o.Candidates {
		names[i] = c.Descriptor.Name
	}
	return names
}

// SortNames sorts names case-insensitively, falling back to byte order so
// that names differing only in case still sort deterministically.
func SortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
}
