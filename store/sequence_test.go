package store

import (
	"testing"

	. "github.com/fulldump/biff"
)

func testProps() []Property {
	return []Property{Int("k"), String("v")}
}

func row(k int, v string) Cursor {
	return Values(testProps(), map[string]interface{}{"k": k, "v": v})
}

func intAt(m *Mem, r int) int {
	b, _ := m.Get(r, 0)
	return int(DecodeInt(b))
}

func TestMemInsertGet(t *testing.T) {
	m := NewMem(testProps()...)

	AssertNil(m.InsertAt(0, row(1, "one"), 1))
	AssertNil(m.InsertAt(1, row(2, "two"), 1))
	AssertNil(m.InsertAt(1, row(9, "middle"), 1))

	AssertEqual(m.Size(), 3)
	AssertEqual(intAt(m, 0), 1)
	AssertEqual(intAt(m, 1), 9)
	AssertEqual(intAt(m, 2), 2)

	b, err := m.Get(1, 1)
	AssertNil(err)
	AssertEqual(string(b), "middle")
}

func TestMemInsertCount(t *testing.T) {
	m := NewMem(testProps()...)

	AssertNil(m.InsertAt(0, row(7, "x"), 5))

	AssertEqual(m.Size(), 5)
	for r := 0; r < 5; r++ {
		AssertEqual(intAt(m, r), 7)
	}
}

func TestMemRemoveSet(t *testing.T) {
	m := NewMem(testProps()...)
	for i := 0; i < 5; i++ {
		AssertNil(m.InsertAt(m.Size(), row(i, "x"), 1))
	}

	AssertNil(m.RemoveAt(1, 2))
	AssertEqual(m.Size(), 3)
	AssertEqual(intAt(m, 1), 3)

	AssertNil(m.SetAt(1, row(42, "reset")))
	AssertEqual(intAt(m, 1), 42)

	AssertNil(m.Set(1, 1, []byte("patched")))
	b, _ := m.Get(1, 1)
	AssertEqual(string(b), "patched")
}

func TestMemSetGetIsNoop(t *testing.T) {
	m := NewMem(testProps()...)
	AssertNil(m.InsertAt(0, row(1, "one"), 1))

	b, _ := m.Get(0, 1)
	AssertNil(m.Set(0, 1, b))

	after, _ := m.Get(0, 1)
	AssertEqual(string(after), "one")
}

func TestMemAdoptsProperties(t *testing.T) {
	m := NewMem()

	AssertNil(m.InsertAt(0, row(1, "one"), 1))

	AssertEqual(m.NumProperties(), 2)
	AssertEqual(m.FindProperty("k"), 0)
	AssertEqual(m.FindProperty("v"), 1)
	AssertEqual(intAt(m, 0), 1)
}

func TestMemKindConflict(t *testing.T) {
	m := NewMem(Int("k"))

	bad := Values([]Property{String("k")}, map[string]interface{}{"k": "oops"})
	err := m.InsertAt(0, bad, 1)
	AssertNotNil(err)
	AssertEqual(m.Size(), 0)
}

func TestMemSearch(t *testing.T) {
	m := NewMem(testProps()...)
	for _, k := range []int{1, 3, 3, 5, 9} {
		AssertNil(m.InsertAt(m.Size(), row(k, "x"), 1))
	}

	probe := Values([]Property{Int("k")}, map[string]interface{}{"k": 3})
	AssertEqual(m.Search(probe), 1)

	pos, count := m.RestrictSearch(probe)
	AssertEqual(pos, 1)
	AssertEqual(count, 2)

	probe = Values([]Property{Int("k")}, map[string]interface{}{"k": 4})
	AssertEqual(m.Search(probe), 3)
	_, count = m.RestrictSearch(probe)
	AssertEqual(count, 0)
}

func TestMemSortOn(t *testing.T) {
	m := NewMem(testProps()...)
	for i, k := range []int{7, 3, 9, 3, 1} {
		AssertNil(m.InsertAt(m.Size(), row(k, string(rune('a'+i))), 1))
	}

	perm := m.SortOn([]Property{Int("k")})

	AssertEqual(len(perm), 5)
	AssertEqual(perm, []int{4, 1, 3, 0, 2}) // stable: the two 3s keep order
}

func TestMemCloneSlice(t *testing.T) {
	m := NewMem(testProps()...)
	for i := 0; i < 5; i++ {
		AssertNil(m.InsertAt(m.Size(), row(i, "x"), 1))
	}

	empty := m.Clone()
	AssertEqual(empty.Size(), 0)
	AssertEqual(empty.NumProperties(), 2)

	part := m.Slice(1, 4)
	AssertEqual(part.Size(), 3)
	AssertEqual(intAt(part, 0), 1)
	AssertEqual(intAt(part, 2), 3)

	// the slice is detached
	AssertNil(part.Set(0, 0, EncodeInt(99)))
	AssertEqual(intAt(m, 1), 1)
}

func TestMemViewCells(t *testing.T) {
	m := NewMem(View("_B"))
	m.SetSize(1)

	sub, err := m.ViewAt(0, 0)
	AssertNil(err)
	AssertNil(sub.InsertAt(0, row(5, "inner"), 1))

	again, err := m.ViewAt(0, 0)
	AssertNil(err)
	AssertEqual(again.Size(), 1)
	AssertEqual(intAt(again, 0), 5)

	_, err = m.Get(0, 0)
	AssertNotNil(err) // view cells hold no bytes
}

func TestMemAppendFrom(t *testing.T) {
	a := NewMem(testProps()...)
	b := NewMem(testProps()...)
	AssertNil(a.InsertAt(0, row(1, "x"), 1))
	AssertNil(b.InsertAt(0, row(2, "y"), 1))
	AssertNil(b.InsertAt(1, row(3, "z"), 1))

	AssertNil(a.AppendFrom(b))

	AssertEqual(a.Size(), 3)
	AssertEqual(intAt(a, 2), 3)
}

func TestCopyRowDetaches(t *testing.T) {
	m := NewMem(testProps()...)
	AssertNil(m.InsertAt(0, row(1, "one"), 1))

	c := CopyRow(m, 0)
	AssertNil(m.Set(0, 1, []byte("changed")))

	b, _ := c.Seq.Get(c.Row, 1)
	AssertEqual(string(b), "one")
}

func TestHandlerCompare(t *testing.T) {
	m := NewMem(testProps()...)
	AssertNil(m.InsertAt(0, row(5, "abc"), 1))

	h := m.NthHandler(0)
	AssertEqual(h.PropId(), "k")
	AssertEqual(h.Compare(0, EncodeInt(5)), 0)
	AssertEqual(h.Compare(0, EncodeInt(9)), -1)
	AssertEqual(h.Compare(0, EncodeInt(-1)), 1)

	hv := m.NthHandler(1)
	AssertEqual(hv.Compare(0, []byte("abc")), 0)
	AssertEqual(hv.Compare(0, []byte("abd")) < 0, true)
}
