// Package collection manages ordered, repeated sub-form rows such as
// financing contributions and execution dates.
//
// Indices address the underlying slice, soft-deleted rows included. Rows
// carry a RowID that stays stable across removals so views and validation
// paths can be regenerated from the current state at any time.
package collection

import "github.com/google/uuid"

// Row is one repeated sub-form. A nil PersistedID marks a row the backend
// has never seen.
type Row[T any] struct {
	RowID       string
	PersistedID *int64
	Fields      T
	Deleted     bool
	// Disabled rows stay visible for re-enabling but are never submitted.
	Disabled bool
}

// Persisted reports whether the backend has assigned an identifier.
func (r Row[T]) Persisted() bool {
	return r.PersistedID != nil
}

// Collection is an immutable list of rows. The zero value is empty and
// ready to use.
type Collection[T any] struct {
	rows []Row[T]
}

// New builds a collection from already-loaded rows. Rows without a RowID
// are assigned one.
func New[T any](rows ...Row[T]) Collection[T] {
	out := make([]Row[T], len(rows))
	for i, r := range rows {
		if r.RowID == "" {
			r.RowID = uuid.NewString()
		}
		out[i] = r
	}
	return Collection[T]{rows: out}
}

// Len counts every row, soft-deleted ones included.
func (c Collection[T]) Len() int {
	return len(c.rows)
}

// At returns the row at index i.
func (c Collection[T]) At(i int) (Row[T], bool) {
	if i < 0 || i >= len(c.rows) {
		return Row[T]{}, false
	}
	return c.rows[i], true
}

// Rows returns a copy of the underlying rows.
func (c Collection[T]) Rows() []Row[T] {
	out := make([]Row[T], len(c.rows))
	copy(out, c.rows)
	return out
}

// IndexOf returns the index of the row with the given RowID, or -1.
func (c Collection[T]) IndexOf(rowID string) int {
	for i, r := range c.rows {
		if r.RowID == rowID {
			return i
		}
	}
	return -1
}

// Append adds a new unpersisted row and returns the new collection with
// the row's RowID.
func (c Collection[T]) Append(fields T) (Collection[T], string) {
	row := Row[T]{RowID: uuid.NewString(), Fields: fields}
	out := make([]Row[T], len(c.rows), len(c.rows)+1)
	copy(out, c.rows)
	return Collection[T]{rows: append(out, row)}, row.RowID
}

// RemoveAt removes the row at index i. A persisted row is flagged Deleted
// in place so the removal reaches the backend, and the length is
// unchanged. An unpersisted row is spliced out. An index out of range is a
// no-op.
func (c Collection[T]) RemoveAt(i int) Collection[T] {
	if i < 0 || i >= len(c.rows) {
		return c
	}
	if c.rows[i].Persisted() {
		out := c.Rows()
		out[i].Deleted = true
		return Collection[T]{rows: out}
	}
	out := make([]Row[T], 0, len(c.rows)-1)
	out = append(out, c.rows[:i]...)
	out = append(out, c.rows[i+1:]...)
	return Collection[T]{rows: out}
}

// RemoveRow is RemoveAt addressed by RowID.
func (c Collection[T]) RemoveRow(rowID string) Collection[T] {
	return c.RemoveAt(c.IndexOf(rowID))
}

// UpdateAt replaces the fields of the row at index i with patch applied.
// Deleted rows and out-of-range indices are left alone.
func (c Collection[T]) UpdateAt(i int, patch func(T) T) Collection[T] {
	if i < 0 || i >= len(c.rows) || c.rows[i].Deleted {
		return c
	}
	out := c.Rows()
	out[i].Fields = patch(out[i].Fields)
	return Collection[T]{rows: out}
}

// SetDisabled toggles whether the row at index i will be submitted.
func (c Collection[T]) SetDisabled(i int, disabled bool) Collection[T] {
	if i < 0 || i >= len(c.rows) || c.rows[i].Deleted {
		return c
	}
	out := c.Rows()
	out[i].Disabled = disabled
	return Collection[T]{rows: out}
}

// Indexed pairs a row with its position in the underlying collection.
type Indexed[T any] struct {
	Index int
	Row   Row[T]
}

// Visible returns the rows to render: everything not soft-deleted, with
// the index to use for UpdateAt and RemoveAt.
func (c Collection[T]) Visible() []Indexed[T] {
	var out []Indexed[T]
	for i, r := range c.rows {
		if r.Deleted {
			continue
		}
		out = append(out, Indexed[T]{Index: i, Row: r})
	}
	return out
}

// Active returns the indices of rows that are neither deleted nor
// disabled.
func (c Collection[T]) Active() []int {
	var out []int
	for i, r := range c.rows {
		if r.Deleted || r.Disabled {
			continue
		}
		out = append(out, i)
	}
	return out
}
