package remap

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fulldump/metaview/store"
)

// OrderedViewer keeps its base sorted on the leading numKeys columns and
// resolves lookups by binary search. Inserting an existing key replaces the
// row instead of duplicating it.
type OrderedViewer struct {
	base    store.Sequence
	numKeys int
}

func NewOrdered(base store.Sequence, numKeys int) *OrderedViewer {
	return &OrderedViewer{base: base, numKeys: numKeys}
}

func (v *OrderedViewer) keyCompare(row int, key store.Cursor) int {
	for i := 0; i < v.numKeys; i++ {
		buf, err := v.base.Get(row, i)
		if err != nil {
			return -1
		}
		h := key.Seq.NthHandler(i)
		if f := h.Compare(key.Row, buf); f != 0 {
			return f
		}
	}
	return 0
}

func (v *OrderedViewer) Template() store.Sequence { return v.base.Clone() }

func (v *OrderedViewer) Size() int { return v.base.Size() }

// Lookup returns the lower-bound position of key and whether the row there
// matches it exactly. A key missing any of the ordering properties returns
// pos -1: binary search does not apply and the caller should scan.
func (v *OrderedViewer) Lookup(key store.Cursor) (pos, count int) {
	kv := key.Container()
	for k := 0; k < v.numKeys; k++ {
		if kv.FindProperty(v.base.NthProperty(k).Name) < 0 {
			return -1, 0
		}
	}

	// lower bound over the key columns only; the value may carry more
	// properties and those must not steer the search
	pos = sort.Search(v.base.Size(), func(i int) bool {
		return v.keyCompare(i, key) <= 0
	})
	if pos < v.base.Size() && v.keyCompare(pos, key) == 0 {
		return pos, 1
	}
	return pos, 0
}

func (v *OrderedViewer) Get(row, col int) ([]byte, error) {
	return v.base.Get(row, col)
}

// Set writes one cell. Writing a key cell relocates the whole row to its
// new sorted position, through a remove and a reinsert.
func (v *OrderedViewer) Set(row, col int, b []byte) error {
	if col < v.numKeys {
		temp, err := v.base.Get(row, col)
		if err != nil {
			return err
		}
		if bytes.Equal(temp, b) {
			return nil // no effect, just ignore it
		}
	}

	if err := v.base.Set(row, col, b); err != nil {
		return err
	}

	if col < v.numKeys {
		moved := store.CopyRow(v.base, row)
		if err := v.base.RemoveAt(row, 1); err != nil {
			return err
		}
		return v.Insert(0, moved, 1) // position is ignored
	}
	return nil
}

// Insert places the value at its sorted position, ignoring pos. The value
// must carry every ordering property.
func (v *OrderedViewer) Insert(pos int, value store.Cursor, count int) error {
	if count <= 0 {
		return fmt.Errorf("insert count %d", count)
	}

	i, n := v.Lookup(value)
	if i < 0 {
		return fmt.Errorf("insert into ordered view: %w", ErrKeyNotApplicable)
	}

	if n == 0 {
		return v.base.InsertAt(i, value, 1)
	}
	return v.base.SetAt(i, value) // replace existing
}

func (v *OrderedViewer) Remove(pos, count int) error {
	return v.base.RemoveAt(pos, count)
}
