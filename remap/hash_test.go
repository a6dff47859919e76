package remap

import (
	"bytes"
	"math/rand"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/metaview/store"
)

func newHashView() (*HashViewer, *store.Mem) {
	base := store.NewMem(recordProps()...)
	v, err := NewHash(base, 1, nil)
	AssertNil(err)
	return v, base
}

func hashInsert(v *HashViewer, k int, val string) {
	AssertNil(v.Insert(v.Size(), record(k, val), 1))
}

func TestHashInsertLookup(t *testing.T) {
	v, _ := newHashView()

	for _, k := range []int{5, 2, 9, 2} {
		hashInsert(v, k, "x")
	}

	AssertEqual(v.Size(), 3)

	pos, count := v.Lookup(key(2))
	AssertEqual(count, 1)
	AssertEqual(keyAt(v.base, pos), 2)

	_, count = v.Lookup(key(7))
	AssertEqual(count, 0)
}

func TestHashDuplicateKeysLastWins(t *testing.T) {
	v, _ := newHashView()

	hashInsert(v, 10, "first")
	hashInsert(v, 20, "other")
	hashInsert(v, 10, "last")

	AssertEqual(v.Size(), 2)

	pos, count := v.Lookup(key(10))
	AssertEqual(count, 1)
	AssertEqual(valueAt(v, pos), "last")
}

func assertMapShape(v *HashViewer) {
	n := v.m.Size() - 1
	AssertEqual(n >= 4 && n&(n-1) == 0, true) // 2^k slots plus the trailer

	fill := v.base.Size() + int(v.getSpare())
	AssertEqual(fill*3 < n*2, true)
}

func TestHashResize(t *testing.T) {
	v, _ := newHashView()

	keys := rand.New(rand.NewSource(1)).Perm(10000)

	for i, k := range keys {
		hashInsert(v, k, "payload")

		if (i+1)%1000 == 0 {
			assertMapShape(v)
			for _, seen := range keys[:i+1] {
				pos, count := v.Lookup(key(seen))
				AssertEqual(count, 1)
				AssertEqual(keyAt(v.base, pos), seen)
			}
		}
	}

	AssertEqual(v.Size(), 10000)
	mapSize := v.m.Size()
	AssertEqual(mapSize == 16385 || mapSize == 32769, true)
}

func TestHashKeyMutationCascade(t *testing.T) {
	v, base := newHashView()

	hashInsert(v, 1, "one")
	hashInsert(v, 2, "two")

	// writing key 2 over key 1 deletes the row that carried 2
	AssertNil(v.Set(0, 0, store.EncodeInt(2)))

	AssertEqual(v.Size(), 1)
	AssertEqual(keyAt(base, 0), 2)
	AssertEqual(valueAt(v, 0), "one")

	pos, count := v.Lookup(key(2))
	AssertEqual(count, 1)
	AssertEqual(pos, 0)
}

func TestHashSetNonKeyColumn(t *testing.T) {
	v, _ := newHashView()

	hashInsert(v, 1, "one")
	AssertNil(v.Set(0, 1, []byte("uno")))

	AssertEqual(v.Size(), 1)
	AssertEqual(valueAt(v, 0), "uno")

	pos, count := v.Lookup(key(1))
	AssertEqual(count, 1)
	AssertEqual(pos, 0)
}

func TestHashSetSameKeyIsNoop(t *testing.T) {
	v, _ := newHashView()

	hashInsert(v, 1, "one")
	spare := v.getSpare()

	AssertNil(v.Set(0, 0, store.EncodeInt(1)))

	AssertEqual(v.Size(), 1)
	AssertEqual(v.getSpare(), spare)
}

func countTombstones(v *HashViewer) int {
	total := 0
	for i := 0; i < v.m.Size()-1; i++ {
		if v.slotHash(i) == -1 {
			total++
		}
	}
	return total
}

func TestHashTombstoneAccounting(t *testing.T) {
	v, _ := newHashView()

	for k := 0; k < 100; k++ {
		hashInsert(v, k, "x")
	}
	for i := 0; i < 30; i++ {
		AssertNil(v.Remove(0, 1))
	}

	AssertEqual(v.Size(), 70)
	AssertEqual(countTombstones(v), int(v.getSpare()))
	assertMapShape(v)

	for k := 30; k < 100; k++ {
		pos, count := v.Lookup(key(k))
		AssertEqual(count, 1)
		AssertEqual(keyAt(v.base, pos), k)
	}
}

func TestHashRemoveShrinksMap(t *testing.T) {
	v, _ := newHashView()

	for k := 0; k < 1000; k++ {
		hashInsert(v, k, "x")
	}
	grown := v.m.Size()

	AssertNil(v.Remove(0, 990))

	AssertEqual(v.Size(), 10)
	AssertEqual(v.m.Size() < grown, true)
	assertMapShape(v)

	for k := 990; k < 1000; k++ {
		_, count := v.Lookup(key(k))
		AssertEqual(count, 1)
	}
}

func TestHashLookupMissingKeyProps(t *testing.T) {
	v, _ := newHashView()
	hashInsert(v, 1, "one")

	probe := store.Values([]store.Property{store.String("other")}, map[string]interface{}{
		"other": "nope",
	})
	pos, count := v.Lookup(probe)
	AssertEqual(pos, -1)
	AssertEqual(count, 0)
}

func TestHashInsertRemoveRoundTrip(t *testing.T) {
	v, _ := newHashView()

	hashInsert(v, 1, "one")
	hashInsert(v, 2, "two")
	hashInsert(v, 3, "three")

	before := [][]byte{}
	for r := 0; r < v.Size(); r++ {
		b, _ := v.Get(r, 1)
		before = append(before, append([]byte{}, b...))
	}

	AssertNil(v.Insert(v.Size(), record(99, "temp"), 1))
	pos, count := v.Lookup(key(99))
	AssertEqual(count, 1)
	AssertNil(v.Remove(pos, 1))

	AssertEqual(v.Size(), len(before))
	for r := range before {
		b, _ := v.Get(r, 1)
		AssertEqual(bytes.Equal(b, before[r]), true)
	}
}

func TestHashPersistedMap(t *testing.T) {
	base := store.NewMem(recordProps()...)
	v, err := NewHash(base, 1, nil)
	AssertNil(err)
	for k := 0; k < 50; k++ {
		AssertNil(v.Insert(v.Size(), record(k, "x"), 1))
	}

	// the map sequence round-trips through its serialized form and keeps
	// answering lookups without a rebuild
	buf := &bytes.Buffer{}
	AssertNil(store.WriteSequence(buf, v.Map().(*store.Mem)))
	restored, err := store.ReadSequence(buf)
	AssertNil(err)

	v2, err := NewHash(base, 1, restored)
	AssertNil(err)
	AssertEqual(v2.getPoly(), v.getPoly())
	AssertEqual(v2.getSpare(), v.getSpare())

	for k := 0; k < 50; k++ {
		pos, count := v2.Lookup(key(k))
		AssertEqual(count, 1)
		AssertEqual(keyAt(base, pos), k)
	}
}

func TestHashTemplate(t *testing.T) {
	v, _ := newHashView()
	tpl := v.Template()
	AssertEqual(tpl.Size(), 0)
	AssertEqual(tpl.NumProperties(), 2)
}
