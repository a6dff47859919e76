package remap

import (
	"github.com/fulldump/metaview/store"
)

// ReadOnlyViewer forwards reads to its base and refuses every mutation.
type ReadOnlyViewer struct {
	base store.Sequence
}

func NewReadOnly(base store.Sequence) *ReadOnlyViewer {
	return &ReadOnlyViewer{base: base}
}

func (v *ReadOnlyViewer) Template() store.Sequence { return v.base.Clone() }

func (v *ReadOnlyViewer) Size() int { return v.base.Size() }

func (v *ReadOnlyViewer) Lookup(key store.Cursor) (pos, count int) {
	return v.base.RestrictSearch(key)
}

func (v *ReadOnlyViewer) Get(row, col int) ([]byte, error) {
	return v.base.Get(row, col)
}

func (v *ReadOnlyViewer) Set(row, col int, b []byte) error {
	return ErrReadOnly
}

func (v *ReadOnlyViewer) Insert(pos int, value store.Cursor, count int) error {
	return ErrReadOnly
}

func (v *ReadOnlyViewer) Remove(pos, count int) error {
	return ErrReadOnly
}
