package tree

// Update returns a forest with fn applied to the data of the node at path.
// Field edits never cascade. A path that does not resolve, or that points
// at a soft-deleted node, leaves the forest unchanged.
func Update[T any](forest []Node[T], path Path, fn func(T) T) []Node[T] {
	out, _ := TryUpdate(forest, path, func(v T) (T, error) {
		return fn(v), nil
	})
	return out
}

// TryUpdate is Update for edits that can reject their input. On error the
// original forest is returned together with the error.
func TryUpdate[T any](forest []Node[T], path Path, fn func(T) (T, error)) ([]Node[T], error) {
	var editErr error
	out, ok := modify(forest, path, func(siblings []Node[T], idx int) ([]Node[T], bool) {
		if siblings[idx].Deleted {
			return siblings, false
		}
		data, err := fn(siblings[idx].Data)
		if err != nil {
			editErr = err
			return siblings, false
		}
		cp := cloneLevel(siblings)
		cp[idx].Data = data
		return cp, true
	})
	if editErr != nil || !ok {
		return forest, editErr
	}
	return out, nil
}

// DeleteNode removes the node at path from the forest.
//
// An unpersisted node is dropped together with its subtree. A persisted
// node stays in the forest with Deleted set on itself and on every
// persisted descendant; unpersisted descendants have nothing to delete on
// the backend and are dropped. Calling DeleteNode again on the same node
// yields the same subtree. A path that does not resolve is a no-op.
func DeleteNode[T any](forest []Node[T], path Path) []Node[T] {
	out, ok := modify(forest, path, func(siblings []Node[T], idx int) ([]Node[T], bool) {
		target := siblings[idx]
		if !target.Persisted() {
			cp := make([]Node[T], 0, len(siblings)-1)
			cp = append(cp, siblings[:idx]...)
			return append(cp, siblings[idx+1:]...), true
		}
		cp := cloneLevel(siblings)
		cp[idx] = markDeleted(target)
		return cp, true
	})
	if !ok {
		return forest
	}
	return out
}

func markDeleted[T any](n Node[T]) Node[T] {
	n.Deleted = true
	var kept []Node[T]
	for _, c := range n.Children {
		if !c.Persisted() {
			continue
		}
		kept = append(kept, markDeleted(c))
	}
	n.Children = kept
	return n
}

// Insert appends a new unpersisted node under parent and returns the new
// forest with the path of the inserted node. A nil parent appends a root.
// When parent does not resolve or is deleted the forest is returned
// unchanged with a nil path.
func Insert[T any](forest []Node[T], parent Path, data T) ([]Node[T], Path) {
	if len(parent) == 0 {
		out := make([]Node[T], len(forest), len(forest)+1)
		copy(out, forest)
		out = append(out, Node[T]{Data: data})
		return out, Path{len(out) - 1}
	}

	var inserted Path
	out, ok := modify(forest, parent, func(siblings []Node[T], idx int) ([]Node[T], bool) {
		if siblings[idx].Deleted {
			return siblings, false
		}
		cp := cloneLevel(siblings)
		children := make([]Node[T], len(cp[idx].Children), len(cp[idx].Children)+1)
		copy(children, cp[idx].Children)
		cp[idx].Children = append(children, Node[T]{Data: data})
		inserted = parent.Child(len(children))
		return cp, true
	})
	if !ok {
		return forest, nil
	}
	return out, inserted
}

// modify rebuilds the slices along path, letting edit replace the sibling
// slice that holds the target. ok is false when the path does not resolve
// or edit declined the change.
func modify[T any](level []Node[T], path Path, edit func(siblings []Node[T], idx int) ([]Node[T], bool)) ([]Node[T], bool) {
	if len(path) == 0 {
		return level, false
	}
	idx := path[0]
	if idx < 0 || idx >= len(level) {
		return level, false
	}
	if len(path) == 1 {
		return edit(level, idx)
	}
	children, ok := modify(level[idx].Children, path[1:], edit)
	if !ok {
		return level, false
	}
	out := cloneLevel(level)
	out[idx].Children = children
	return out, true
}

func cloneLevel[T any](level []Node[T]) []Node[T] {
	out := make([]Node[T], len(level))
	copy(out, level)
	return out
}
