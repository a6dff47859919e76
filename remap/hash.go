package remap

import (
	"bytes"
	"fmt"

	"github.com/fulldump/metaview/store"
)

// HashViewer imposes uniqueness on the leading numKeys columns of its base
// and answers key lookups in O(1) through an open-addressed hash map. The
// map is itself a row sequence so it can persist next to the data: 2^k slot
// rows with integer cells _H (hash) and _R (base row) plus one trailer row
// carrying the probe polynomial (_H) and the tombstone count (_R).
//
// Slot states: H == 0 is empty, H == -1 with R == -1 is a tombstone,
// anything else is occupied. These conventions and the hash function are
// part of the persisted format.
type HashViewer struct {
	base    store.Sequence
	m       store.Sequence
	numKeys int

	colH int
	colR int
}

// The hash/probe machinery below derives from Python's dictionaries
// (Stichting Mathematisch Centrum; reworked by Christian Tismer and
// Jean-Claude Wippler before landing here).

// NewHash wraps base in a hash view over its first numKeys columns. A nil
// mapSeq gets a fresh in-memory map; a persisted map is picked up as-is and
// only rebuilt when its meta slot is unusable or it no longer covers base.
func NewHash(base store.Sequence, numKeys int, mapSeq store.Sequence) (*HashViewer, error) {
	if mapSeq == nil {
		mapSeq = store.NewMem(store.Int("_H"), store.Int("_R"))
	}
	v := &HashViewer{
		base:    base,
		m:       mapSeq,
		numKeys: numKeys,
		colH:    mapSeq.FindProperty("_H"),
		colR:    mapSeq.FindProperty("_R"),
	}
	if v.colH < 0 || v.colR < 0 {
		return nil, fmt.Errorf("map schema must carry _H and _R: %w", ErrCorruptMap)
	}
	if v.m.Size() == 0 {
		v.m.SetSize(1)
	}
	if v.getPoly() == 0 || v.m.Size() <= v.base.Size() {
		if err := v.dictResize(v.base.Size()); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Map exposes the slot sequence, mainly so the host can persist it.
func (v *HashViewer) Map() store.Sequence { return v.m }

func (v *HashViewer) slotHash(i int) int32 {
	b, _ := v.m.Get(i, v.colH)
	return int32(store.DecodeInt(b))
}

func (v *HashViewer) setSlotHash(i int, h int32) {
	v.m.Set(i, v.colH, store.EncodeInt(int64(h)))
}

func (v *HashViewer) slotRow(i int) int32 {
	b, _ := v.m.Get(i, v.colR)
	return int32(store.DecodeInt(b))
}

func (v *HashViewer) setSlotRow(i int, r int32) {
	v.m.Set(i, v.colR, store.EncodeInt(int64(r)))
}

// The last slot is the trailer: polynomial in _H, spare count in _R.

func (v *HashViewer) getPoly() int32  { return v.slotHash(v.m.Size() - 1) }
func (v *HashViewer) setPoly(p int32) { v.setSlotHash(v.m.Size()-1, p) }

func (v *HashViewer) getSpare() int32  { return v.slotRow(v.m.Size() - 1) }
func (v *HashViewer) setSpare(n int32) { v.setSlotRow(v.m.Size()-1, n) }

func (v *HashViewer) keySame(row int, key store.Cursor) bool {
	if row < 0 {
		return false
	}
	for i := 0; i < v.numKeys; i++ {
		buf, err := v.base.Get(row, i)
		if err != nil {
			return false
		}
		h := key.Seq.NthHandler(i)
		if h.Compare(key.Row, buf) != 0 {
			return false
		}
	}
	return true
}

// hashRow combines the cell hashes of the leading numKeys cells. The cell
// hash borrows from Python's string_hash, on wrapping 32-bit arithmetic,
// and only scans the first and last 100 bytes of cells larger than 200
// bytes so blob keys stay cheap. Bit-exact by contract: hashes persist.
func (v *HashViewer) hashRow(cur store.Cursor) int32 {
	var hash int32

	for i := 0; i < v.numKeys; i++ {
		buf, err := cur.Seq.Get(cur.Row, i)
		if err != nil || len(buf) == 0 {
			continue
		}
		x := int32(buf[0]) << 7
		n := len(buf)
		head := n
		if head > 200 {
			head = 100
		}
		for _, b := range buf[:head] {
			x = 1000003*x ^ int32(b)
		}
		if n > 200 {
			for _, b := range buf[n-100:] {
				x = 1000003*x ^ int32(b)
			}
		}
		x ^= int32(n)
		hash ^= x ^ int32(i)
	}

	if hash == 0 {
		hash = -1 // 0 is reserved for empty slots
	}
	return hash
}

// lookDict probes for hash/key and returns the slot that terminates the
// probe: the match, or the place an insert should use (first tombstone on
// the way, else the empty slot). The probe cycles through GF(2^k)-{0}.
func (v *HashViewer) lookDict(hash int32, key store.Cursor) (int, error) {
	mask := uint32(v.m.Size() - 2)

	// start at mask & ~hash: degenerate hashes (small ints) have lots of
	// leading zeros, ~hash spreads them out
	i := int(mask & ^uint32(hash))
	h := v.slotHash(i)
	r := v.slotRow(i)
	if h == 0 || (h == hash && r >= 0 && v.keySame(int(r), key)) {
		return i, nil
	}
	freeslot := -1
	if h == -1 {
		freeslot = i
	}

	incr := (uint32(hash) ^ (uint32(hash) >> 3)) & mask
	if incr == 0 {
		incr = mask
	}

	poly := uint32(v.getPoly())
	for steps := 2 * v.m.Size(); steps > 0; steps-- {
		i = int((uint32(i) + incr) & mask)
		h = v.slotHash(i)
		if h == 0 {
			if freeslot != -1 {
				return freeslot, nil
			}
			return i, nil
		}
		r = v.slotRow(i)
		if h == hash && r >= 0 && v.keySame(int(r), key) {
			return i, nil
		}
		if h == -1 && freeslot == -1 {
			freeslot = i
		}
		incr <<= 1
		if incr > mask {
			incr ^= poly // implicitly clears the highest bit
		}
	}
	// a healthy map always has empty slots (fill stays below 2/3)
	return 0, fmt.Errorf("probe did not terminate: %w", ErrCorruptMap)
}

func (v *HashViewer) insertDict(row int) error {
	cur := store.Cursor{Seq: v.base, Row: row}
	hash := v.hashRow(cur)
	i, err := v.lookDict(hash, cur)
	if err != nil {
		return err
	}

	if v.slotRow(i) == -1 {
		if v.slotHash(i) != 0 {
			n := v.getSpare()
			if n <= 0 {
				return fmt.Errorf("tombstone reuse without spare: %w", ErrCorruptMap)
			}
			v.setSpare(n - 1)
		}
		v.setSlotHash(i, hash)
	}
	v.setSlotRow(i, int32(row))
	return nil
}

func (v *HashViewer) removeDict(pos int) error {
	cur := store.Cursor{Seq: v.base, Row: pos}
	i, err := v.lookDict(v.hashRow(cur), cur)
	if err != nil {
		return err
	}
	if v.slotRow(i) != int32(pos) {
		return fmt.Errorf("slot %d does not map row %d: %w", i, pos, ErrCorruptMap)
	}

	v.setSlotHash(i, -1)
	v.setSlotRow(i, -1)
	v.setSpare(v.getSpare() + 1)
	return nil
}

// dictResize rebuilds the map with the smallest usable power-of-two size
// above minused, then reinserts every base row. The map is left untouched
// when the requested size exceeds the polynomial table.
func (v *HashViewer) dictResize(minused int) error {
	i := 0
	size := 4
	for ; size <= minused; size <<= 1 {
		i++
		if polys[i] == 0 {
			return ErrMapFull
		}
	}

	// one old row survives and ends up last: it becomes the new trailer and
	// is rewritten below
	v.m.SetSize(1)
	empty := store.Values(
		[]store.Property{store.Int("_H"), store.Int("_R")},
		map[string]interface{}{"_H": 0, "_R": -1},
	)
	if err := v.m.InsertAt(0, empty, size); err != nil {
		return err
	}

	v.setPoly(polys[i])
	v.setSpare(0)

	for j := 0; j < v.base.Size(); j++ {
		if err := v.insertDict(j); err != nil {
			return err
		}
	}
	return nil
}

func (v *HashViewer) Template() store.Sequence { return v.base.Clone() }

func (v *HashViewer) Size() int { return v.base.Size() }

func (v *HashViewer) Lookup(key store.Cursor) (pos, count int) {
	// hashing only applies if the key carries every key property
	kv := key.Container()
	for k := 0; k < v.numKeys; k++ {
		if kv.FindProperty(v.base.NthProperty(k).Name) < 0 {
			return -1, 0
		}
	}

	i, err := v.lookDict(v.hashRow(key), key)
	if err != nil {
		return -1, 0
	}

	row := int(v.slotRow(i))
	if row >= 0 && v.keySame(row, key) {
		return row, 1
	}
	return 0, 0 // not -1, the key is known to be absent
}

func (v *HashViewer) Get(row, col int) ([]byte, error) {
	return v.base.Get(row, col)
}

// Set writes one cell. Setting a key cell to a key already present in the
// view deletes the row that held it, so a caller updating several cells of
// one row must re-resolve the row position after every key write.
func (v *HashViewer) Set(row, col int, b []byte) error {
	if col < v.numKeys {
		temp, err := v.base.Get(row, col)
		if err != nil {
			return err
		}
		if bytes.Equal(temp, b) {
			return nil // no effect, don't touch the map
		}
		if err := v.removeDict(row); err != nil {
			return err
		}
	}

	if err := v.base.Set(row, col, b); err != nil {
		return err
	}

	if col < v.numKeys {
		i, n := v.Lookup(store.Cursor{Seq: v.base, Row: row})
		if i >= 0 && n > 0 {
			if err := v.Remove(i, 1); err != nil {
				return err
			}
			if i < row {
				row-- // the victim sat below, everything shifted down
			}
		}
		return v.insertDict(row)
	}
	return nil
}

// Insert adds the value row at pos, or overwrites the row already carrying
// its key: inserts deduplicate by key, last write wins.
func (v *HashViewer) Insert(pos int, value store.Cursor, count int) error {
	if count <= 0 {
		return fmt.Errorf("insert count %d", count)
	}

	i, n := v.Lookup(value)
	if i >= 0 && n > 0 {
		return v.base.SetAt(i, value) // replace existing
	}

	used := v.base.Size()
	fill := used + int(v.getSpare())
	if fill*3 >= (v.m.Size()-1)*2 {
		if err := v.dictResize(used * 2); err != nil {
			return err
		}
	}

	// an insert below existing rows shifts every mapped row above it
	if pos < used {
		for r := 0; r < v.m.Size()-1; r++ {
			if n := v.slotRow(r); n >= int32(pos) {
				v.setSlotRow(r, n+1)
			}
		}
	}

	if err := v.base.InsertAt(pos, value, 1); err != nil {
		return err
	}
	return v.insertDict(pos)
}

func (v *HashViewer) Remove(pos, count int) error {
	for ; count > 0; count-- {
		// the map persists, so shrink it eagerly when it empties out
		if v.base.Size()*3 < v.m.Size()-1 {
			if err := v.dictResize(v.base.Size()); err != nil {
				return err
			}
		}

		if err := v.removeDict(pos); err != nil {
			return err
		}

		for r := 0; r < v.m.Size()-1; r++ {
			if n := v.slotRow(r); n > int32(pos) {
				v.setSlotRow(r, n-1)
			}
		}

		if err := v.base.RemoveAt(pos, 1); err != nil {
			return err
		}
	}
	return nil
}
