// Package quadtree is a region quadtree over point entries.
//
// A Tree is built once per simulation tick and thrown away: there is no delete or
// move operation. Nodes subdivide lazily when a leaf overflows, and entries already
// stored in a node stay there after it subdivides.
package quadtree

import (
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

const (
	// DefaultCapacity is the number of entries a node stores before it subdivides.
	DefaultCapacity = 4
	// DefaultMaxDepth bounds subdivision. A node at this depth keeps accepting entries
	// past its capacity, so coincident points cannot recurse forever.
	DefaultMaxDepth = 16
)

// Entry is a point-like item stored in the tree.
// ID is stable across rebuilds and lets a caller recognize itself in query results.
type Entry[T any] struct {
	ID      string
	X, Y    float64
	Payload T
}

// Pos returns the entry location as a vector.
func (e Entry[T]) Pos() geometry.Vector2D {
	return geometry.Vector2D{X: e.X, Y: e.Y}
}

// Option customizes a Tree.
type Option func(*options)

type options struct {
	maxDepth int
}

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// Tree is one node of the quadtree; the root is the Tree returned by New.
type Tree[T any] struct {
	boundary geometry.Box
	capacity int
	depth    int
	maxDepth int
	entries  []Entry[T]
	// children is nil for a leaf, otherwise NW, NE, SW, SE.
	children *[4]*Tree[T]
}

// New creates an empty leaf covering boundary. A capacity below 1 falls back to DefaultCapacity.
func New[T any](boundary geometry.Box, capacity int, opts ...Option) *Tree[T] {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return newNode[T](boundary, capacity, 0, o.maxDepth)
}

func newNode[T any](boundary geometry.Box, capacity, depth, maxDepth int) *Tree[T] {
	return &Tree[T]{
		boundary: boundary,
		capacity: capacity,
		depth:    depth,
		maxDepth: maxDepth,
		entries:  make([]Entry[T], 0, capacity),
	}
}

// Boundary returns the area covered by this node.
func (t *Tree[T]) Boundary() geometry.Box {
	return t.boundary
}

// Divided reports whether this node has children.
func (t *Tree[T]) Divided() bool {
	return t.children != nil
}

// Children returns the four quadrants in NW, NE, SW, SE order, or nil for a leaf.
func (t *Tree[T]) Children() []*Tree[T] {
	if t.children == nil {
		return nil
	}
	return t.children[:]
}

// Entries returns the entries stored directly in this node.
func (t *Tree[T]) Entries() []Entry[T] {
	return t.entries
}

// Insert stores e in the shallowest node that contains it and has room.
// It returns false only when e lies outside the tree boundary; such entries are dropped.
func (t *Tree[T]) Insert(e Entry[T]) bool {
	if !t.boundary.Contains(e.Pos()) {
		return false
	}

	if t.children == nil {
		if len(t.entries) < t.capacity || t.depth >= t.maxDepth {
			t.entries = append(t.entries, e)
			return true
		}
		t.subdivide()
	}

	for _, child := range t.children {
		if child.Insert(e) {
			return true
		}
	}
	// Rounding in the child boxes can leave a sliver on a split line that no
	// child contains; the point is still inside this node, so it stays here.
	t.entries = append(t.entries, e)
	return true
}

// subdivide creates the four quadrants. Entries already stored here are not moved.
func (t *Tree[T]) subdivide() {
	q := t.boundary.Quadrants()
	t.children = &[4]*Tree[T]{
		newNode[T](q[0], t.capacity, t.depth+1, t.maxDepth),
		newNode[T](q[1], t.capacity, t.depth+1, t.maxDepth),
		newNode[T](q[2], t.capacity, t.depth+1, t.maxDepth),
		newNode[T](q[3], t.capacity, t.depth+1, t.maxDepth),
	}
}

// Query appends to found every entry of the subtree that lies inside region and returns
// the extended slice. Subtrees whose boundary does not touch region are skipped.
// Result order is unspecified.
func (t *Tree[T]) Query(region geometry.Region, found []Entry[T]) []Entry[T] {
	if !region.Overlaps(t.boundary) {
		return found
	}

	for _, e := range t.entries {
		if region.Contains(e.Pos()) {
			found = append(found, e)
		}
	}

	if t.children != nil {
		for _, child := range t.children {
			found = child.Query(region, found)
		}
	}
	return found
}

// Len returns the number of entries in the subtree.
func (t *Tree[T]) Len() int {
	n := len(t.entries)
	if t.children != nil {
		for _, child := range t.children {
			n += child.Len()
		}
	}
	return n
}

// Walk visits every node depth first, parents before children.
// Returning false from fn stops descent below that node.
func (t *Tree[T]) Walk(fn func(node *Tree[T], depth int) bool) {
	if !fn(t, t.depth) || t.children == nil {
		return
	}
	for _, child := range t.children {
		child.Walk(fn)
	}
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
	Entries  int
}

// Stats walks the tree and counts nodes, leaves and entries.
func (t *Tree[T]) Stats() Stats {
	var s Stats
	t.Walk(func(node *Tree[T], depth int) bool {
		s.Nodes++
		s.Entries += len(node.entries)
		if node.children == nil {
			s.Leaves++
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		return true
	})
	return s
}
