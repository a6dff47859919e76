package database

import (
	"github.com/fulldump/metaview/remap"
	"github.com/fulldump/metaview/store"
)

// rawViewer adapts a bare sequence to the viewer contract so the table code
// drives raw tables and virtual views through one path. No index: lookups
// binary-search the sequence with RestrictSearch, which gives meaningful
// answers only when the rows are sorted on the key; inserts land wherever
// the caller says.
type rawViewer struct {
	seq store.Sequence
}

var _ remap.Viewer = (*rawViewer)(nil)

func (v *rawViewer) Template() store.Sequence { return v.seq.Clone() }

func (v *rawViewer) Size() int { return v.seq.Size() }

func (v *rawViewer) Lookup(key store.Cursor) (pos, count int) {
	return v.seq.RestrictSearch(key)
}

func (v *rawViewer) Get(row, col int) ([]byte, error) {
	return v.seq.Get(row, col)
}

func (v *rawViewer) Set(row, col int, b []byte) error {
	return v.seq.Set(row, col, b)
}

func (v *rawViewer) Insert(pos int, value store.Cursor, count int) error {
	return v.seq.InsertAt(pos, value, count)
}

func (v *rawViewer) Remove(pos, count int) error {
	return v.seq.RemoveAt(pos, count)
}
