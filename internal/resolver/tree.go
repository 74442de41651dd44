package resolver

import (
	"fmt"
	"io"

	"github.com/plugmgr/plugmgr/internal/manifest"
)

// Node is one entry of a rendered dependency tree.
type Node struct {
	Name     string
	Version  string
	Soft     bool // reached through a soft dependency
	Missing  bool // not installed
	Deduped  bool // already shown earlier in the tree
	Children []*Node
}

// BuildTree expands the hard and soft dependencies of root over the
// installed descriptors. Each component is expanded once; later occurrences
// are marked Deduped, which also terminates cycles.
func BuildTree(root string, installed []*manifest.Descriptor) *Node {
	byKey := make(map[string]*manifest.Descriptor, len(installed))
	for _, d := range installed {
		if d != nil {
			byKey[d.Key()] = d
		}
	}
	seen := make(map[string]bool)
	return buildNode(root, false, byKey, seen)
}

func buildNode(name string, soft bool, byKey map[string]*manifest.Descriptor, seen map[string]bool) *Node {
	node := &Node{Name: name, Soft: soft}
	key := manifest.NameKey(name)

	d, ok := byKey[key]
	if !ok {
		node.Missing = true
		return node
	}
	node.Name = d.Name
	node.Version = d.Version

	// Check if already seen (dedup).
	if seen[key] {
		node.Deduped = true
		return node
	}
	seen[key] = true

	for _, dep := range d.Depend {
		node.Children = append(node.Children, buildNode(dep, false, byKey, seen))
	}
	for _, dep := range d.SoftDepend {
		node.Children = append(node.Children, buildNode(dep, true, byKey, seen))
	}
	return node
}

// PrintTree writes node and its children using box-drawing connectors.
// Pass an empty prefix for the root.
func PrintTree(w io.Writer, node *Node, prefix string, isLast bool) {
	if node == nil {
		return
	}

	connector := "├── "
	if isLast {
		connector = "└── "
	}

	label := node.Name
	if node.Version != "" {
		label += " " + node.Version
	}
	if node.Soft {
		label += " (soft)"
	}
	switch {
	case node.Missing:
		label += " (missing)"
	case node.Deduped:
		label += " (deduped)"
	}

	// For the root node, don't print a connector.
	if prefix == "" {
		fmt.Fprintf(w, "  %s\n", label)
	} else {
		fmt.Fprintf(w, "  %s%s%s\n", prefix, connector, label)
	}

	childPrefix := prefix
	if prefix != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	} else {
		childPrefix = " "
	}

	for i, child := range node.Children {
		PrintTree(w, child, childPrefix, i == len(node.Children)-1)
	}
}
