package remap

import (
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/metaview/store"
)

func indexedProps() []store.Property {
	return []store.Property{store.Int("k")}
}

func newIndexedView(unique bool) (*IndexedViewer, *store.Mem) {
	base := store.NewMem(recordProps()...)
	mapSeq := store.NewMem(store.Int("_X"))
	v, err := NewIndexed(base, mapSeq, indexedProps(), unique)
	AssertNil(err)
	return v, base
}

func TestIndexedConstructionBuildsPermutation(t *testing.T) {
	base := store.NewMem(recordProps()...)
	for _, k := range []int{7, 3, 9, 1, 5} {
		AssertNil(base.InsertAt(base.Size(), record(k, "x"), 1))
	}

	mapSeq := store.NewMem(store.Int("_X"))
	v, err := NewIndexed(base, mapSeq, indexedProps(), false)
	AssertNil(err)

	AssertEqual(mapSeq.Size(), base.Size())

	// base[map[i]] ascends on the index property
	last := -1 << 62
	for i := 0; i < mapSeq.Size(); i++ {
		k := keyAt(base, v.entry(i))
		AssertEqual(last <= k, true)
		last = k
	}
}

func TestIndexedRemoveMaintainsMap(t *testing.T) {
	base := store.NewMem(recordProps()...)
	for _, k := range []int{1, 3, 5, 7, 9} { // already sorted
		AssertNil(base.InsertAt(base.Size(), record(k, "x"), 1))
	}

	mapSeq := store.NewMem(store.Int("_X"))
	v, err := NewIndexed(base, mapSeq, indexedProps(), false)
	AssertNil(err)

	AssertNil(v.Remove(1, 2)) // drops keys 3 and 5

	AssertEqual(base.Size(), 3)
	AssertEqual(mapSeq.Size(), 3)

	last := -1 << 62
	for i := 0; i < mapSeq.Size(); i++ {
		e := v.entry(i)
		AssertEqual(e >= 0 && e < base.Size(), true)
		k := keyAt(base, e)
		AssertEqual(last <= k, true)
		last = k
	}
}

func TestIndexedUniqueInsertReplaces(t *testing.T) {
	v, base := newIndexedView(true)

	AssertNil(v.Insert(0, record(5, "old"), 1))
	AssertNil(v.Insert(0, record(5, "new"), 1))

	AssertEqual(base.Size(), 1)
	AssertEqual(valueAt(v, 0), "new")
}

func TestIndexedLookupOnSortedBase(t *testing.T) {
	v, base := newIndexedView(false)

	for _, k := range []int{2, 4, 6, 8} {
		AssertNil(v.Insert(0, record(k, "x"), 1))
	}

	pos, count := v.Lookup(key(6))
	AssertEqual(count, 1)
	AssertEqual(keyAt(base, pos), 6)

	_, count = v.Lookup(key(5))
	AssertEqual(count, 0)
}

func TestIndexedSetKeyColumnKeepsMapStale(t *testing.T) {
	base := store.NewMem(recordProps()...)
	for _, k := range []int{1, 5, 9} {
		AssertNil(base.InsertAt(base.Size(), record(k, "x"), 1))
	}
	mapSeq := store.NewMem(store.Int("_X"))
	v, err := NewIndexed(base, mapSeq, indexedProps(), false)
	AssertNil(err)

	// the write lands in the base but the permutation is not rearranged
	AssertNil(v.Set(0, 0, store.EncodeInt(7)))
	AssertEqual(keyAt(base, 0), 7)
	AssertEqual(v.entry(0), 0)
	AssertEqual(mapSeq.Size(), 3)
}
