package remap

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fulldump/metaview/store"
)

// IndexedViewer maintains a secondary index: a persisted permutation map
// whose i-th entry is the base row holding the i-th smallest key under the
// index properties. The map is rebuilt on construction whenever its size
// does not match the base.
//
// Known limitations, kept for format compatibility with existing stores:
// Lookup binary-searches the base itself and therefore assumes the base is
// sorted on the index properties, and Set on an indexed column does not
// update the permutation map.
type IndexedViewer struct {
	base   store.Sequence
	m      store.Sequence
	props  []store.Property
	unique bool

	colMap int
}

// NewIndexed wraps base with a permutation map over props. The map sequence
// must carry a single integer property. Inserts replace a row with an equal
// key whether or not unique is set, and otherwise add a single row.
func NewIndexed(base, mapSeq store.Sequence, props []store.Property, unique bool) (*IndexedViewer, error) {
	if mapSeq.NumProperties() != 1 || mapSeq.NthProperty(0).Kind != store.KindInt {
		return nil, fmt.Errorf("index map must carry a single int property: %w", ErrCorruptMap)
	}

	v := &IndexedViewer{
		base:   base,
		m:      mapSeq,
		props:  props,
		unique: unique,
		colMap: 0,
	}

	n := base.Size()
	if mapSeq.Size() != n {
		perm := base.SortOn(props)
		mapSeq.SetSize(n)
		for i, r := range perm {
			v.setEntry(i, r)
		}
	}
	return v, nil
}

// Map exposes the permutation sequence, mainly so the host can persist it.
func (v *IndexedViewer) Map() store.Sequence { return v.m }

func (v *IndexedViewer) entry(i int) int {
	b, _ := v.m.Get(i, v.colMap)
	return int(store.DecodeInt(b))
}

func (v *IndexedViewer) setEntry(i, row int) {
	v.m.Set(i, v.colMap, store.EncodeInt(int64(row)))
}

func (v *IndexedViewer) keyCompare(row int, key store.Cursor) int {
	for i := range v.props {
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

func (v *IndexedViewer) Template() store.Sequence { return v.base.Clone() }

func (v *IndexedViewer) Size() int { return v.base.Size() }

func (v *IndexedViewer) Lookup(key store.Cursor) (pos, count int) {
	kv := key.Container()
	for _, p := range v.props {
		if kv.FindProperty(p.Name) < 0 {
			return -1, 0
		}
	}

	// assumes the base is sorted on the index properties, like the
	// ordering view; see the type comment
	pos = sort.Search(v.base.Size(), func(i int) bool {
		return v.keyCompare(i, key) <= 0
	})
	if pos < v.base.Size() && v.keyCompare(pos, key) == 0 {
		return pos, 1
	}
	return pos, 0
}

func (v *IndexedViewer) Get(row, col int) ([]byte, error) {
	return v.base.Get(row, col)
}

// Set writes one cell. Writes to indexed columns do not rearrange the
// permutation map; the map catches up on the next rebuild.
func (v *IndexedViewer) Set(row, col int, b []byte) error {
	id := v.base.NthProperty(col).Name
	keyMod := false
	for _, p := range v.props {
		if p.Name == id {
			keyMod = true
			break
		}
	}

	if keyMod {
		temp, err := v.base.Get(row, col)
		if err != nil {
			return err
		}
		if bytes.Equal(temp, b) {
			return nil // no effect, just ignore it
		}
	}

	return v.base.Set(row, col, b)
}

func (v *IndexedViewer) Insert(pos int, value store.Cursor, count int) error {
	if count <= 0 {
		return fmt.Errorf("insert count %d", count)
	}
	if v.unique {
		count = 1
	}

	i, n := v.Lookup(value)
	if i < 0 {
		return fmt.Errorf("insert into indexed view: %w", ErrKeyNotApplicable)
	}

	if n == 0 {
		return v.base.InsertAt(i, value, 1)
	}
	return v.base.SetAt(i, value) // replace existing
}

// Remove drops rows from the base and keeps the permutation map aligned:
// entries into the removed range disappear, entries above it shift down.
func (v *IndexedViewer) Remove(pos, count int) error {
	if err := v.base.RemoveAt(pos, count); err != nil {
		return err
	}

	for n := v.m.Size() - 1; n >= 0; n-- {
		e := v.entry(n)
		if e < pos {
			continue
		}
		if e < pos+count {
			v.m.RemoveAt(n, 1)
		} else {
			v.setEntry(n, e-count)
		}
	}
	return nil
}
