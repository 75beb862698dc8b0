package tree

// VisibleNode is one row of the rendered tree. Path addresses the node in
// the data tree so edits issued from the view land on the right node even
// when soft-deleted siblings are hidden.
type VisibleNode[T any] struct {
	Path  Path
	Depth int
	Last  bool // last visible sibling
	Node  Node[T]
}

// Visible flattens the forest depth-first, skipping soft-deleted nodes and
// everything beneath them. It never modifies the forest.
func Visible[T any](forest []Node[T]) []VisibleNode[T] {
	var out []VisibleNode[T]
	collectVisible(forest, nil, 0, &out)
	return out
}

func collectVisible[T any](level []Node[T], prefix Path, depth int, out *[]VisibleNode[T]) {
	lastVisible := -1
	for i := len(level) - 1; i >= 0; i-- {
		if !level[i].Deleted {
			lastVisible = i
			break
		}
	}
	for i, n := range level {
		if n.Deleted {
			continue
		}
		p := prefix.Child(i)
		*out = append(*out, VisibleNode[T]{Path: p, Depth: depth, Last: i == lastVisible, Node: n})
		collectVisible(n.Children, p, depth+1, out)
	}
}
