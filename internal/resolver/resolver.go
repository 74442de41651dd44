package resolver

import (
	"fmt"

	"github.com/plugmgr/plugmgr/internal/manifest"
)

// DependentsOf returns the names of every installed component other than
// target that declares target as a hard or soft dependency, sorted with
// SortNames. Nil entries are ignored.
func DependentsOf(target string, installed []*manifest.Descriptor) []string {
	key := manifest.NameKey(target)
	var out []string
	for _, d := range installed {
		if d == nil || d.Key() == key {
			continue
		}
		if d.DependsOn(target) {
			out = append(out, d.Name)
		}
	}
	SortNames(out)
	return out
}

// FindMissingHardDependencies returns, in declared order, the hard
// dependencies of d that are neither installed nor among candidates.
func FindMissingHardDependencies(d *manifest.Descriptor, installed NameSet, candidates map[string]Candidate) []string {
	if d == nil {
		return nil
	}
	supplied := make(NameSet, len(candidates))
	for k, c := range candidates {
		supplied.Add(k)
		if c.Descriptor != nil {
			supplied.Add(c.Descriptor.Name)
		}
	}

	var missing []string
	seen := make(NameSet)
	for _, dep := range d.Depend {
		if seen.Has(dep) || installed.Has(dep) || supplied.Has(dep) {
			continue
		}
		seen.Add(dep)
		missing = append(missing, dep)
	}
	return missing
}

type mark int

const (
	unvisited mark = iota
	visiting
	visited
)

type walk struct {
	installed  NameSet
	candidates map[string]Candidate
	marks      map[string]mark
	order      Order
}

// ResolveInstallOrder computes the install sequence for root and the
// candidates it transitively hard-depends on. Candidates are keyed by name
// (case-insensitive). Edges to installed components or to names that are
// not candidates are skipped. An edge back into the current path is a cycle:
// it is recorded in BrokenCycles and not followed.
//
// Malformed descriptors (nil, unnamed, or with blank dependency entries)
// return a *manifest.DescriptorError.
func ResolveInstallOrder(root Candidate, candidates map[string]Candidate, installed NameSet) (Order, error) {
	if err := manifest.Check(root.Descriptor); err != nil {
		return Order{}, fmt.Errorf("checking root candidate: %w", err)
	}
	if installed == nil {
		installed = NameSet{}
	}

	index := make(map[string]Candidate, len(candidates)+1)
	for k, c := range candidates {
		if err := manifest.Check(c.Descriptor); err != nil {
			return Order{}, fmt.Errorf("checking candidate %q: %w", k, err)
		}
		index[manifest.NameKey(k)] = c
	}
	index[root.Key()] = root

	w := &walk{
		installed:  installed,
		candidates: index,
		marks:      make(map[string]mark, len(index)),
	}
	w.visit(root)
	return w.order, nil
}

func (w *walk) visit(c Candidate) {
	key := c.Key()
	w.marks[key] = visiting

	for _, dep := range c.Descriptor.Depend {
		depKey := manifest.NameKey(dep)
		if w.installed.Has(depKey) {
			continue
		}
		switch w.marks[depKey] {
		case visited:
			continue
		case visiting:
			w.order.BrokenCycles = append(w.order.BrokenCycles, Edge{From: c.Descriptor.Name, To: dep})
			continue
		}
		next, ok := w.candidates[depKey]
		if !ok {
			continue
		}
		w.visit(next)
	}

	w.marks[key] = visited
	w.order.Candidates = append(w.order.Candidates, c)
}
