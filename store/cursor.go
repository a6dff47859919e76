package store

// Cursor names one row of a sequence: a (sequence, index) pair. It is not a
// row by value; dereferencing always goes back to the owning sequence, so
// the same cursor observes later mutations.
type Cursor struct {
	Seq Sequence
	Row int
}

// Container returns the sequence the cursor points into.
func (c Cursor) Container() Sequence { return c.Seq }

// Values builds a detached single-row sequence and returns a cursor to it.
// Accepted cell values: int, int32, int64, string, []byte and *Mem.
// Handy to carry lookup keys and insert values around.
func Values(props []Property, values map[string]interface{}) Cursor {
	m := NewMem(props...)
	m.SetSize(1)
	for name, v := range values {
		col := m.FindProperty(name)
		if col < 0 {
			continue
		}
		switch x := v.(type) {
		case int:
			m.Set(0, col, EncodeInt(int64(x)))
		case int32:
			m.Set(0, col, EncodeInt(int64(x)))
		case int64:
			m.Set(0, col, EncodeInt(x))
		case string:
			m.Set(0, col, []byte(x))
		case []byte:
			m.Set(0, col, x)
		case *Mem:
			m.SetViewAt(0, col, x)
		}
	}
	return Cursor{Seq: m, Row: 0}
}

// CopyRow detaches one row into its own single-row sequence. Used when a row
// is about to move and its current cell values must survive the move.
func CopyRow(seq Sequence, row int) Cursor {
	m := NewMem()
	m.InsertAt(0, Cursor{Seq: seq, Row: row}, 1)
	return Cursor{Seq: m, Row: 0}
}
