package store

import (
	"bytes"
	"encoding/binary"
)

// Kind enumerates the cell types a column can hold.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindBytes
	KindView
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindView:
		return "view"
	}
	return "unknown"
}

// Property identifies one column: a name and a kind. Two properties with the
// same name are the same column, wherever they live.
type Property struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

func Int(name string) Property    { return Property{Name: name, Kind: KindInt} }
func String(name string) Property { return Property{Name: name, Kind: KindString} }
func Bytes(name string) Property  { return Property{Name: name, Kind: KindBytes} }
func View(name string) Property   { return Property{Name: name, Kind: KindView} }

// EncodeInt produces the cell encoding for an integer value: 8 bytes, two's
// complement, little endian. This layout is persisted, do not change it.
func EncodeInt(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

// DecodeInt reads an integer cell. An empty cell decodes to zero.
func DecodeInt(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

func compareCells(kind Kind, a, b []byte) int {
	switch kind {
	case KindInt:
		av, bv := DecodeInt(a), DecodeInt(b)
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
		return 0
	default:
		return bytes.Compare(a, b)
	}
}
