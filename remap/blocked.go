package remap

import (
	"fmt"

	"github.com/fulldump/metaview/store"
)

// kLimit is the target maximum block size of a blocked view.
const kLimit = 1000

// BlockedViewer presents a flat sequence over a two-level layout: the base
// holds z data blocks (subviews under _B) plus one separator block as its
// last row, where separator i is the single record sitting logically
// between block i and block i+1. An in-memory offsets array caches the
// cumulative logical position of each separator and is rebuilt from the
// blocks on construction.
type BlockedViewer struct {
	base    store.Sequence
	colB    int
	offsets []int
}

// NewBlocked wraps base, which must carry a view property _B. A base with
// fewer than two rows is grown so there is always one data block and the
// separator block.
func NewBlocked(base store.Sequence) (*BlockedViewer, error) {
	colB := base.FindProperty("_B")
	if colB < 0 {
		return nil, fmt.Errorf("blocked base must carry a _B view property")
	}
	if base.Size() < 2 {
		base.SetSize(2)
	}

	v := &BlockedViewer{base: base, colB: colB}

	n := base.Size() - 1
	v.offsets = make([]int, n)
	total := 0
	for i := 0; i < n; i++ {
		bv, err := base.ViewAt(i, colB)
		if err != nil {
			return nil, err
		}
		total += bv.Size()
		v.offsets[i] = total
		total++
	}
	return v, nil
}

func (v *BlockedViewer) block(i int) (*store.Mem, error) {
	return v.base.ViewAt(i, v.colB)
}

// slot returns the block holding logical position pos and the position
// local to that block. When pos addresses the separator after block i the
// local position equals the block size; callers detect that case by
// comparing offsets[i] with the original pos.
func (v *BlockedViewer) slot(pos int) (i, local int) {
	for i = 0; i < len(v.offsets); i++ {
		if pos <= v.offsets[i] {
			break
		}
	}
	if i > 0 {
		pos -= v.offsets[i-1] + 1
	}
	return i, pos
}

// resolve maps a logical row to (block, local), redirecting separator
// positions into the separator block.
func (v *BlockedViewer) resolve(pos int) (bno, local int) {
	i, local := v.slot(pos)
	if i < len(v.offsets) && v.offsets[i] == pos {
		return v.base.Size() - 1, i
	}
	return i, local
}

// split promotes block[bno][row] to the separator at bno and moves the rows
// above it into a fresh successor block.
func (v *BlockedViewer) split(bno, row int) error {
	z := v.base.Size() - 1
	bz, err := v.block(z)
	if err != nil {
		return err
	}
	bv, err := v.block(bno)
	if err != nil {
		return err
	}

	if err := bz.InsertAt(bno, store.Cursor{Seq: bv, Row: row}, 1); err != nil {
		return err
	}

	upper := store.Values([]store.Property{store.View("_B")}, map[string]interface{}{
		"_B": bv.Slice(row+1, bv.Size()),
	})
	if err := v.base.InsertAt(bno+1, upper, 1); err != nil {
		return err
	}

	v.offsets = append(v.offsets, 0)
	copy(v.offsets[bno+1:], v.offsets[bno:])
	v.offsets[bno] = v.offsets[bno+1] - bv.Size() + row

	return bv.RemoveAt(row, bv.Size()-row)
}

// merge folds separator bno and block bno+1 onto the end of block bno.
func (v *BlockedViewer) merge(bno int) error {
	z := v.base.Size() - 1
	bz, err := v.block(z)
	if err != nil {
		return err
	}
	bv1, err := v.block(bno)
	if err != nil {
		return err
	}
	bv2, err := v.block(bno + 1)
	if err != nil {
		return err
	}

	if err := bv1.InsertAt(bv1.Size(), store.Cursor{Seq: bz, Row: bno}, 1); err != nil {
		return err
	}
	if err := bv1.AppendFrom(bv2); err != nil {
		return err
	}

	if err := bz.RemoveAt(bno, 1); err != nil {
		return err
	}
	if err := v.base.RemoveAt(bno+1, 1); err != nil {
		return err
	}
	v.offsets = append(v.offsets[:bno], v.offsets[bno+1:]...)
	return nil
}

// Template is the schema of the records, i.e. of any data block.
func (v *BlockedViewer) Template() store.Sequence {
	bv, err := v.block(0)
	if err != nil {
		return store.NewMem()
	}
	return bv.Clone()
}

func (v *BlockedViewer) Size() int {
	return v.offsets[len(v.offsets)-1]
}

// Lookup is not accelerated here; the blocked view only restructures
// storage. Callers scan or wrap it in an ordering view.
func (v *BlockedViewer) Lookup(key store.Cursor) (pos, count int) {
	return -1, 0
}

func (v *BlockedViewer) Get(row, col int) ([]byte, error) {
	bno, local := v.resolve(row)
	bv, err := v.block(bno)
	if err != nil {
		return nil, err
	}
	return bv.Get(local, col)
}

func (v *BlockedViewer) Set(row, col int, b []byte) error {
	bno, local := v.resolve(row)
	bv, err := v.block(bno)
	if err != nil {
		return err
	}
	return bv.Set(local, col, b)
}

func (v *BlockedViewer) Insert(pos int, value store.Cursor, count int) error {
	if count <= 0 {
		return fmt.Errorf("insert count %d", count)
	}
	z := v.base.Size() - 1
	i, local := v.slot(pos)
	if i >= z {
		return fmt.Errorf("insert at %d: %w", pos, store.ErrOutOfRange)
	}

	bv, err := v.block(i)
	if err != nil {
		return err
	}
	if err := bv.InsertAt(local, value, count); err != nil {
		return err
	}
	for j := i; j < z; j++ {
		v.offsets[j] += count
	}

	// massive insertions are first split off in full slices
	for bv.Size() >= 2*kLimit {
		if err := v.split(i, bv.Size()-kLimit-2); err != nil {
			return err
		}
	}
	if bv.Size() > kLimit {
		if err := v.split(i, bv.Size()/2); err != nil {
			return err
		}
	}
	return nil
}

func (v *BlockedViewer) Remove(pos, count int) error {
	if count <= 0 {
		return fmt.Errorf("remove count %d", count)
	}
	if pos+count > v.Size() {
		return fmt.Errorf("remove %d at %d of %d: %w", count, pos, v.Size(), store.ErrOutOfRange)
	}

	z := v.base.Size() - 1
	i, local := v.slot(pos)
	if i >= z {
		return fmt.Errorf("remove at %d: %w", pos, store.ErrOutOfRange)
	}

	bv, err := v.block(i)
	if err != nil {
		return err
	}

	// a range spanning blocks is first merged into one (inefficient but safe)
	for local+count > bv.Size() {
		if i >= z-1 {
			return fmt.Errorf("remove range escapes the last block: %w", store.ErrOutOfRange)
		}
		if err := v.merge(i); err != nil {
			return err
		}
		z--
	}

	if err := bv.RemoveAt(local, count); err != nil {
		return err
	}
	for j := i; j < z; j++ {
		v.offsets[j] -= count
	}

	// an underflowing block merges with its predecessor, else its successor
	if bv.Size() < kLimit/2 {
		if i > 0 {
			i--
			bv, err = v.block(i)
			if err != nil {
				return err
			}
		}
		if i >= z-1 {
			return nil // no successor to merge with, underflow is tolerated
		}
		if err := v.merge(i); err != nil {
			return err
		}
	}

	if bv.Size() > kLimit {
		return v.split(i, bv.Size()/2)
	}
	return nil
}
