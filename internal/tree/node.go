// Package tree holds the copy-on-write plan tree and its cascading
// soft-delete mutator.
//
// A forest is a plain []Node[T]. Every mutation returns a new forest that
// shares untouched subtrees with its input; only the slices along the path
// from the root to the mutated node are copied. Callers must treat nodes as
// values and never mutate a Children slice they did not build themselves.
package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one element of the plan tree. A nil ID marks a node that has
// never been persisted.
type Node[T any] struct {
	ID       *int64
	Data     T
	Deleted  bool
	Children []Node[T]
}

// Persisted reports whether the backend has assigned an identifier.
func (n Node[T]) Persisted() bool {
	return n.ID != nil
}

// Path addresses a node by child indices from the forest root. Indices
// refer to the data tree, including soft-deleted siblings.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// Parent returns the path of the enclosing node, or nil for a root.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return append(Path(nil), p[:len(p)-1]...)
}

// Child returns the path of the i-th child of p.
func (p Path) Child(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// ParsePath parses a dotted path such as "0.2.1".
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}
	parts := strings.Split(s, ".")
	p := make(Path, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid path segment %q in %q", part, s)
		}
		p[i] = n
	}
	return p, nil
}

// Resolve returns the node at path. The second result is false when the
// path does not address a node.
func Resolve[T any](forest []Node[T], path Path) (Node[T], bool) {
	var zero Node[T]
	if len(path) == 0 {
		return zero, false
	}
	level := forest
	var n Node[T]
	for _, idx := range path {
		if idx < 0 || idx >= len(level) {
			return zero, false
		}
		n = level[idx]
		level = n.Children
	}
	return n, true
}

// Walk visits every node depth-first in order, deleted ones included.
// Returning false from fn skips the node's children.
func Walk[T any](forest []Node[T], fn func(path Path, n Node[T]) bool) {
	walk(forest, nil, fn)
}

func walk[T any](level []Node[T], prefix Path, fn func(Path, Node[T]) bool) {
	for i, n := range level {
		p := prefix.Child(i)
		if fn(p, n) {
			walk(n.Children, p, fn)
		}
	}
}
