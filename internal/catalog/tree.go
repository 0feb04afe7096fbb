// Package catalog holds the storefront's category taxonomy and the filter
// that narrows the product list to the selected node.
package catalog

import (
	"fmt"
	"strings"
)

// Node is either a Leaf or a *Section.
type Node interface {
	isNode()
}

// Leaf is a terminal category; its label doubles as a product category tag.
type Leaf struct{}

func (Leaf) isNode() {}

// Section groups leaves and nested sections, keeping the order they were declared in.
type Section struct {
	labels   []string
	children map[string]Node
}

func (*Section) isNode() {}

// Entry pairs a label with its node while a section is being declared.
type Entry struct {
	Label string
	Node  Node
}

func Child(label string, node Node) Entry {
	return Entry{Label: label, Node: node}
}

// NewSection builds a section from its entries. The taxonomy is hand-authored,
// so a duplicate or empty label is a programming error and panics.
func NewSection(entries ...Entry) *Section {
	s := &Section{
		labels:   make([]string, 0, len(entries)),
		children: make(map[string]Node, len(entries)),
	}
	for _, e := range entries {
		if e.Label == "" {
			panic("catalog: empty category label")
		}
		if _, exists := s.children[e.Label]; exists {
			panic(fmt.Sprintf("catalog: duplicate category label %q", e.Label))
		}
		node := e.Node
		if node == nil {
			node = Leaf{}
		}
		s.labels = append(s.labels, e.Label)
		s.children[e.Label] = node
	}
	return s
}

// Labels returns the child labels in declaration order.
func (s *Section) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func (s *Section) Child(label string) (Node, bool) {
	node, ok := s.children[label]
	return node, ok
}

func (s *Section) Len() int {
	return len(s.labels)
}

func IsLeaf(node Node) bool {
	_, ok := node.(Leaf)
	return ok
}

// LeafLabelsUnder collects every leaf label beneath node at any depth, in
// declaration order and without duplicates. A Leaf has nothing beneath it and
// yields nil; callers match a leaf by its own label.
func LeafLabelsUnder(node Node) []string {
	section, ok := node.(*Section)
	if !ok {
		return nil
	}

	var labels []string
	seen := make(map[string]struct{})
	var collect func(s *Section)
	collect = func(s *Section) {
		for _, label := range s.labels {
			switch child := s.children[label].(type) {
			case Leaf:
				if _, dup := seen[label]; !dup {
					seen[label] = struct{}{}
					labels = append(labels, label)
				}
			case *Section:
				collect(child)
			}
		}
	}
	collect(section)
	return labels
}

// Tree is the root of a taxonomy. It is never mutated after construction.
type Tree struct {
	root *Section
}

func NewTree(entries ...Entry) *Tree {
	return &Tree{root: NewSection(entries...)}
}

func (t *Tree) Root() *Section {
	return t.root
}

// Resolve walks path label by label from the root. The empty path resolves to
// the root section; any missing segment reports false.
func (t *Tree) Resolve(path Path) (Node, bool) {
	var node Node = t.root
	for _, label := range path {
		section, ok := node.(*Section)
		if !ok {
			return nil, false
		}
		node, ok = section.Child(label)
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Walk visits every node depth-first in declaration order. Returning an error
// from fn stops the walk.
func (t *Tree) Walk(fn func(path Path, node Node) error) error {
	var walk func(prefix Path, s *Section) error
	walk = func(prefix Path, s *Section) error {
		for _, label := range s.labels {
			child := s.children[label]
			path := append(prefix[:len(prefix):len(prefix)], label)
			if err := fn(path, child); err != nil {
				return err
			}
			if section, ok := child.(*Section); ok {
				if err := walk(path, section); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(nil, t.root)
}

// PathSeparator joins labels when a path is shown to the shopper.
const PathSeparator = " › "

// Path selects a node from the root; the empty path means "All products".
type Path []string

// ParsePath splits a breadcrumb such as "Lighting › Floor Lamps". A plain "/"
// is accepted too because it is easier to type on a command line.
func ParsePath(s string) Path {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	sep := "/"
	if strings.Contains(s, "›") {
		sep = "›"
	}

	var path Path
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			path = append(path, part)
		}
	}
	return path
}

func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) IsAll() bool {
	return len(p) == 0
}
