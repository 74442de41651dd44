package manifest

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Descriptor is the parsed manifest of a component package. Descriptors are
// never mutated after parsing; a reload or reinstall produces a new one.
type Descriptor struct {
	Name        string                 `yaml:"name" json:"name"`
	Version     string                 `yaml:"version" json:"version"`
	Author      string                 `yaml:"author,omitempty" json:"author,omitempty"`
	Authors     []string               `yaml:"authors,omitempty" json:"authors,omitempty"`
	Description string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Main        string                 `yaml:"main,omitempty" json:"main,omitempty"`
	Depend      []string               `yaml:"depend,omitempty" json:"depend,omitempty"`
	SoftDepend  []string               `yaml:"softdepend,omitempty" json:"softdepend,omitempty"`
	Provides    []string               `yaml:"provides,omitempty" json:"provides,omitempty"`
	Commands    map[string]interface{} `yaml:"commands,omitempty" json:"commands,omitempty"`
	Listeners   []string               `yaml:"listeners,omitempty" json:"listeners,omitempty"`
}

// Key returns the case-folded name used for every identity comparison.
func (d *Descriptor) Key() string {
	return NameKey(d.Name)
}

// NameKey case-folds a component name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AllAuthors merges the single author field with the authors list,
// preserving order and dropping duplicates.
func (d *Descriptor) AllAuthors() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(a string) {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			return
		}
		seen[a] = true
		out = append(out, a)
	}
	add(d.Author)
	for _, a := range d.Authors {
		add(a)
	}
	return out
}

// CommandNames returns the declared command names in sorted order.
func (d *Descriptor) CommandNames() []string {
	names := make([]string, 0, len(d.Commands))
	for name := range d.Commands {
		names = append(names, name)
	}
	sortFold(names)
	return names
}

// DependsOn reports whether d declares name as a hard or soft dependency.
func (d *Descriptor) DependsOn(name string) bool {
	key := NameKey(name)
	for _, dep := range d.Depend {
		if NameKey(dep) == key {
			return true
		}
	}
	for _, dep := range d.SoftDepend {
		if NameKey(dep) == key {
			return true
		}
	}
	return false
}

// SemVer parses the descriptor version. Loose forms such as "1.2" or
// "v2" are accepted.
func (d *Descriptor) SemVer() (*semver.Version, error) {
	return semver.NewVersion(strings.TrimSpace(d.Version))
}

// CompareVersions orders two descriptors by version. Unparseable versions
// sort below parseable ones; two unparseable versions compare equal.
func CompareVersions(a, b *Descriptor) int {
	av, aErr := a.SemVer()
	bv, bErr := b.SemVer()
	switch {
	case aErr != nil && bErr != nil:
		return 0
	case aErr != nil:
		return -1
	case bErr != nil:
		return 1
	}
	return av.Compare(bv)
}

// sortFold sorts names case-insensitively.
func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}
