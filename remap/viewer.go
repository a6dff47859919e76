// Package remap provides virtual views over a base row sequence: read-only,
// hash-unique, block-segmented, ordered and indexed. Every view exposes the
// same operation set as the sequence it wraps, so they are interchangeable
// from the caller's standpoint and never copy the underlying rows.
package remap

import (
	"errors"

	"github.com/fulldump/metaview/store"
)

var (
	// ErrReadOnly is returned by every mutating operation of a read-only view.
	ErrReadOnly = errors.New("view is read only")

	// ErrKeyNotApplicable signals a lookup key that does not carry all the
	// key properties of the view, so the index cannot be used.
	ErrKeyNotApplicable = errors.New("key properties not applicable")

	// ErrMapFull signals a hash map that cannot grow any further.
	ErrMapFull = errors.New("hash map cannot grow beyond 2^30 slots")

	// ErrCorruptMap signals persisted index state that violates the map
	// invariants (wrong map schema, endless probe, slot out of sync).
	ErrCorruptMap = errors.New("corrupt index map")
)

// Viewer is the custom-viewer contract shared by the five views.
//
// Lookup returns a row position and a match count: count > 0 means an exact
// key match exists at pos. A pos of -1 means the key cannot drive this
// view's index at all (missing key properties) and the caller should fall
// back to scanning.
type Viewer interface {
	Template() store.Sequence
	Size() int
	Lookup(key store.Cursor) (pos, count int)
	Get(row, col int) ([]byte, error)
	Set(row, col int, b []byte) error
	Insert(pos int, value store.Cursor, count int) error
	Remove(pos, count int) error
}
