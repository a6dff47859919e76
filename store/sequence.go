package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/btree"
)

var (
	ErrOutOfRange   = errors.New("row out of range")
	ErrKindMismatch = errors.New("property kind mismatch")
)

// Sequence is the base row-sequence contract every viewer builds on: an
// ordered set of rows, each row a fixed set of typed cells addressed by
// property. Implementations own their rows; viewers only borrow them.
type Sequence interface {
	Size() int
	SetSize(n int)
	InsertAt(pos int, value Cursor, count int) error
	RemoveAt(pos, count int) error
	SetAt(pos int, value Cursor) error

	Get(row, col int) ([]byte, error)
	Set(row, col int, b []byte) error
	ViewAt(row, col int) (*Mem, error)
	SetViewAt(row, col int, v *Mem) error

	NumProperties() int
	NthProperty(i int) Property
	FindProperty(name string) int
	NthHandler(i int) Handler

	Search(key Cursor) int
	RestrictSearch(key Cursor) (pos, count int)

	Clone() *Mem
	Slice(begin, end int) *Mem
	SortOn(props []Property) []int
}

type cell struct {
	data []byte
	view *Mem
}

func (c cell) copy() cell {
	out := cell{}
	if c.data != nil {
		out.data = append([]byte{}, c.data...)
	}
	if c.view != nil {
		out.view = c.view.copy()
	}
	return out
}

// Mem is the in-memory column-oriented sequence: one cell slice per
// property. Properties can be adopted on the fly when rows carrying new
// columns are inserted, like schema-less containers do.
type Mem struct {
	props []Property
	cols  [][]cell
	size  int
}

func NewMem(props ...Property) *Mem {
	m := &Mem{}
	for _, p := range props {
		m.addProperty(p)
	}
	return m
}

func (m *Mem) addProperty(p Property) int {
	m.props = append(m.props, p)
	m.cols = append(m.cols, make([]cell, m.size))
	return len(m.props) - 1
}

func (m *Mem) copy() *Mem {
	out := NewMem(m.props...)
	out.size = m.size
	for c := range m.cols {
		col := make([]cell, m.size)
		for r := 0; r < m.size; r++ {
			col[r] = m.cols[c][r].copy()
		}
		out.cols[c] = col
	}
	return out
}

func (m *Mem) Size() int { return m.size }

// SetSize grows with zeroed rows or truncates in place.
func (m *Mem) SetSize(n int) {
	if n < 0 {
		n = 0
	}
	for c := range m.cols {
		if n <= m.size {
			m.cols[c] = m.cols[c][:n]
			continue
		}
		for r := m.size; r < n; r++ {
			m.cols[c] = append(m.cols[c], cell{})
		}
	}
	m.size = n
}

func (m *Mem) NumProperties() int { return len(m.props) }

func (m *Mem) NthProperty(i int) Property { return m.props[i] }

func (m *Mem) FindProperty(name string) int {
	for i, p := range m.props {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (m *Mem) NthHandler(i int) Handler {
	return &memHandler{m: m, col: i}
}

func (m *Mem) checkRow(row int) error {
	if row < 0 || row >= m.size {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, row, m.size)
	}
	return nil
}

func (m *Mem) Get(row, col int) ([]byte, error) {
	if err := m.checkRow(row); err != nil {
		return nil, err
	}
	if m.props[col].Kind == KindView {
		return nil, fmt.Errorf("get '%s': %w", m.props[col].Name, ErrKindMismatch)
	}
	return m.cols[col][row].data, nil
}

func (m *Mem) Set(row, col int, b []byte) error {
	if err := m.checkRow(row); err != nil {
		return err
	}
	if m.props[col].Kind == KindView {
		return fmt.Errorf("set '%s': %w", m.props[col].Name, ErrKindMismatch)
	}
	m.cols[col][row] = cell{data: append([]byte{}, b...)}
	return nil
}

// ViewAt returns the subview held by a view cell, creating an empty one the
// first time the cell is touched.
func (m *Mem) ViewAt(row, col int) (*Mem, error) {
	if err := m.checkRow(row); err != nil {
		return nil, err
	}
	if m.props[col].Kind != KindView {
		return nil, fmt.Errorf("view '%s': %w", m.props[col].Name, ErrKindMismatch)
	}
	if m.cols[col][row].view == nil {
		m.cols[col][row].view = NewMem()
	}
	return m.cols[col][row].view, nil
}

func (m *Mem) SetViewAt(row, col int, v *Mem) error {
	if err := m.checkRow(row); err != nil {
		return err
	}
	if m.props[col].Kind != KindView {
		return fmt.Errorf("view '%s': %w", m.props[col].Name, ErrKindMismatch)
	}
	m.cols[col][row].view = v
	return nil
}

// adopt maps the columns of src into m, appending any property m does not
// have yet. Returns src column index per m column (-1 when absent).
func (m *Mem) adopt(src Sequence) ([]int, error) {
	n := src.NumProperties()
	for j := 0; j < n; j++ {
		p := src.NthProperty(j)
		i := m.FindProperty(p.Name)
		if i < 0 {
			m.addProperty(p)
			continue
		}
		if m.props[i].Kind != p.Kind {
			return nil, fmt.Errorf("property '%s' is %s here, %s there: %w",
				p.Name, m.props[i].Kind, p.Kind, ErrKindMismatch)
		}
	}
	from := make([]int, len(m.props))
	for i, p := range m.props {
		from[i] = src.FindProperty(p.Name)
	}
	return from, nil
}

func (m *Mem) cellFrom(src Sequence, row, col int) (cell, error) {
	if src.NthProperty(col).Kind == KindView {
		v, err := src.ViewAt(row, col)
		if err != nil {
			return cell{}, err
		}
		return cell{view: v.copy()}, nil
	}
	b, err := src.Get(row, col)
	if err != nil {
		return cell{}, err
	}
	return cell{data: append([]byte{}, b...)}, nil
}

// InsertAt inserts count copies of the row named by value at pos. Cells are
// matched by property name; properties unknown to m are adopted, properties
// absent from the value stay zeroed.
func (m *Mem) InsertAt(pos int, value Cursor, count int) error {
	if pos < 0 || pos > m.size {
		return fmt.Errorf("insert at %d of %d: %w", pos, m.size, ErrOutOfRange)
	}
	if count <= 0 {
		return fmt.Errorf("insert count %d", count)
	}
	from, err := m.adopt(value.Seq)
	if err != nil {
		return err
	}
	for c := range m.cols {
		var proto cell
		if from[c] >= 0 {
			proto, err = m.cellFrom(value.Seq, value.Row, from[c])
			if err != nil {
				return err
			}
		}
		fresh := make([]cell, count)
		for k := range fresh {
			fresh[k] = proto.copy()
		}
		m.cols[c] = append(m.cols[c][:pos], append(fresh, m.cols[c][pos:]...)...)
	}
	m.size += count
	return nil
}

// AppendFrom appends every row of src, matching columns by name.
func (m *Mem) AppendFrom(src *Mem) error {
	for r := 0; r < src.Size(); r++ {
		if err := m.InsertAt(m.size, Cursor{Seq: src, Row: r}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mem) RemoveAt(pos, count int) error {
	if count <= 0 || pos < 0 || pos+count > m.size {
		return fmt.Errorf("remove %d at %d of %d: %w", count, pos, m.size, ErrOutOfRange)
	}
	for c := range m.cols {
		m.cols[c] = append(m.cols[c][:pos], m.cols[c][pos+count:]...)
	}
	m.size -= count
	return nil
}

// SetAt overwrites the cells of an existing row with the matching cells of
// the value row.
func (m *Mem) SetAt(pos int, value Cursor) error {
	if err := m.checkRow(pos); err != nil {
		return err
	}
	from, err := m.adopt(value.Seq)
	if err != nil {
		return err
	}
	for c := range m.cols {
		if from[c] < 0 {
			continue
		}
		cl, err := m.cellFrom(value.Seq, value.Row, from[c])
		if err != nil {
			return err
		}
		m.cols[c][pos] = cl
	}
	return nil
}

// keyColumns resolves the key's properties against m, in key order.
type keyColumn struct {
	handler Handler
	col     int
}

func (m *Mem) keyColumns(key Cursor) []keyColumn {
	kv := key.Container()
	out := []keyColumn{}
	for j := 0; j < kv.NumProperties(); j++ {
		col := m.FindProperty(kv.NthProperty(j).Name)
		if col < 0 {
			continue
		}
		out = append(out, keyColumn{handler: kv.NthHandler(j), col: col})
	}
	return out
}

func (m *Mem) compareKey(cols []keyColumn, key Cursor, row int) int {
	for _, kc := range cols {
		f := kc.handler.Compare(key.Row, m.cols[kc.col][row].data)
		if f != 0 {
			return f
		}
	}
	return 0
}

// Search returns the lower-bound row for key on a sequence sorted by the
// key's properties.
func (m *Mem) Search(key Cursor) int {
	cols := m.keyColumns(key)
	return sort.Search(m.size, func(i int) bool {
		return m.compareKey(cols, key, i) <= 0
	})
}

// RestrictSearch narrows a sorted sequence to the rows equal to key,
// returning the first matching row and the match count.
func (m *Mem) RestrictSearch(key Cursor) (pos, count int) {
	cols := m.keyColumns(key)
	pos = sort.Search(m.size, func(i int) bool {
		return m.compareKey(cols, key, i) <= 0
	})
	end := pos
	for end < m.size && m.compareKey(cols, key, end) == 0 {
		end++
	}
	return pos, end - pos
}

// Clone returns an empty sequence with the same schema.
func (m *Mem) Clone() *Mem {
	return NewMem(m.props...)
}

// Slice copies rows [begin, end) into a detached sequence.
func (m *Mem) Slice(begin, end int) *Mem {
	out := NewMem(m.props...)
	out.size = end - begin
	for c := range m.cols {
		col := make([]cell, 0, out.size)
		for r := begin; r < end; r++ {
			col = append(col, m.cols[c][r].copy())
		}
		out.cols[c] = col
	}
	return out
}

type sortItem struct {
	m    *Mem
	cols []int
	row  int
}

func lessItems(a, b sortItem) bool {
	for _, c := range a.cols {
		f := compareCells(a.m.props[c].Kind, a.m.cols[c][a.row].data, b.m.cols[c][b.row].data)
		if f < 0 {
			return true
		}
		if f > 0 {
			return false
		}
	}
	return a.row < b.row
}

// SortOn returns the permutation that orders the rows by props: element i is
// the index of the i-th smallest row. Stable by construction (ties keep
// their original order).
func (m *Mem) SortOn(props []Property) []int {
	cols := []int{}
	for _, p := range props {
		if c := m.FindProperty(p.Name); c >= 0 {
			cols = append(cols, c)
		}
	}
	tree := btree.NewG[sortItem](32, lessItems)
	for r := 0; r < m.size; r++ {
		tree.ReplaceOrInsert(sortItem{m: m, cols: cols, row: r})
	}
	perm := make([]int, 0, m.size)
	tree.Ascend(func(it sortItem) bool {
		perm = append(perm, it.row)
		return true
	})
	return perm
}
