package remap

import (
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/metaview/store"
)

func TestReadOnlyForwardsReads(t *testing.T) {
	base := store.NewMem(recordProps()...)
	for _, k := range []int{1, 2, 3} {
		AssertNil(base.InsertAt(base.Size(), record(k, "x"), 1))
	}

	v := NewReadOnly(base)

	AssertEqual(v.Size(), 3)
	b, err := v.Get(1, 0)
	AssertNil(err)
	AssertEqual(int(store.DecodeInt(b)), 2)
}

func TestReadOnlyLookup(t *testing.T) {
	base := store.NewMem(recordProps()...)
	for _, k := range []int{1, 2, 2, 3} {
		AssertNil(base.InsertAt(base.Size(), record(k, "x"), 1))
	}

	v := NewReadOnly(base)

	pos, count := v.Lookup(key(2))
	AssertEqual(pos, 1)
	AssertEqual(count, 2)

	_, count = v.Lookup(key(9))
	AssertEqual(count, 0)
}

func TestReadOnlyRefusesMutation(t *testing.T) {
	base := store.NewMem(recordProps()...)
	AssertNil(base.InsertAt(0, record(1, "x"), 1))

	v := NewReadOnly(base)

	AssertEqual(v.Set(0, 1, []byte("nope")), ErrReadOnly)
	AssertEqual(v.Insert(0, record(2, "nope"), 1), ErrReadOnly)
	AssertEqual(v.Remove(0, 1), ErrReadOnly)
	AssertEqual(v.Size(), 1)
}
