package store

import (
	"encoding/base64"
	"fmt"
	"io"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// The JSON layout of a sequence is part of the persisted format:
// {"props":[{"name":...,"kind":...}],"rows":[{...},...]} with int cells as
// numbers, string cells as strings, bytes cells base64 encoded and view
// cells as nested sequences.

type seqJSON struct {
	Props []Property               `json:"props"`
	Rows  []map[string]interface{} `json:"rows"`
}

// EncodeValue converts a plain value (as decoded from JSON or handed in by
// a caller) into the cell encoding of the given kind.
func EncodeValue(kind Kind, v interface{}) ([]byte, error) {
	switch kind {
	case KindInt:
		n, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		return EncodeInt(n), nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return []byte(s), nil
	case KindBytes:
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			raw, err := base64.StdEncoding.DecodeString(b)
			if err != nil {
				return nil, fmt.Errorf("bad base64: %w", err)
			}
			return raw, nil
		}
		return nil, fmt.Errorf("expected base64 string, got %T", v)
	}
	return nil, fmt.Errorf("kind %s holds no bytes: %w", kind, ErrKindMismatch)
}

// DecodeValue is the inverse of EncodeValue.
func DecodeValue(kind Kind, b []byte) interface{} {
	switch kind {
	case KindInt:
		return DecodeInt(b)
	case KindString:
		return string(b)
	case KindBytes:
		return base64.StdEncoding.EncodeToString(b)
	}
	return nil
}

// InferProperties derives a schema from plain values: numbers become int
// columns, everything else string columns. Used for schema-less records,
// whose real schema settles on first insert.
func InferProperties(values map[string]interface{}) []Property {
	props := []Property{}
	for name, v := range values {
		switch v.(type) {
		case float64, int, int64, int32:
			props = append(props, Int(name))
		default:
			props = append(props, String(name))
		}
	}
	return props
}

// RowValues decodes one row into plain Go values, the same shape RowCursor
// accepts and the JSON codec emits.
func RowValues(seq Sequence, row int) map[string]interface{} {
	out := map[string]interface{}{}
	for c := 0; c < seq.NumProperties(); c++ {
		p := seq.NthProperty(c)
		if p.Kind == KindView {
			v, _ := seq.ViewAt(row, c)
			out[p.Name] = sequenceJSON(v)
			continue
		}
		b, _ := seq.Get(row, c)
		out[p.Name] = DecodeValue(p.Kind, b)
	}
	return out
}

// RowCursor converts plain values into a one-row sequence under the given
// schema, ready to be used as an insert value or lookup key.
func RowCursor(props []Property, values map[string]interface{}) (Cursor, error) {
	m := NewMem(props...)
	m.SetSize(1)
	for name, v := range values {
		col := m.FindProperty(name)
		if col < 0 {
			continue
		}
		if props[col].Kind == KindView {
			sub, err := viewFromJSON(v)
			if err != nil {
				return Cursor{}, fmt.Errorf("cell '%s': %w", name, err)
			}
			m.SetViewAt(0, col, sub)
			continue
		}
		b, err := EncodeValue(props[col].Kind, v)
		if err != nil {
			return Cursor{}, fmt.Errorf("cell '%s': %w", name, err)
		}
		m.Set(0, col, b)
	}
	return Cursor{Seq: m, Row: 0}, nil
}

func sequenceJSON(m *Mem) seqJSON {
	s := seqJSON{Props: append([]Property{}, m.props...), Rows: []map[string]interface{}{}}
	for r := 0; r < m.Size(); r++ {
		s.Rows = append(s.Rows, RowValues(m, r))
	}
	return s
}

// WriteSequence streams a sequence as JSON.
func WriteSequence(w io.Writer, m *Mem) error {
	enc := jsontext.NewEncoder(w)
	return jsonv2.MarshalEncode(enc, sequenceJSON(m))
}

// ReadSequence rebuilds a sequence from its JSON layout.
func ReadSequence(r io.Reader) (*Mem, error) {
	dec := jsontext.NewDecoder(r)
	s := seqJSON{}
	if err := jsonv2.UnmarshalDecode(dec, &s); err != nil {
		return nil, fmt.Errorf("decode sequence: %w", err)
	}
	return sequenceFromJSON(s)
}

func sequenceFromJSON(s seqJSON) (*Mem, error) {
	m := NewMem(s.Props...)
	for _, row := range s.Rows {
		cur, err := RowCursor(s.Props, row)
		if err != nil {
			return nil, err
		}
		if err := m.InsertAt(m.Size(), cur, 1); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

// viewFromJSON rebuilds a nested sequence; jsonv2 hands nested objects over
// as map[string]interface{}, so the shape is walked by hand.
func viewFromJSON(v interface{}) (*Mem, error) {
	if sub, ok := v.(*Mem); ok {
		return sub, nil
	}
	if s, ok := v.(seqJSON); ok {
		return sequenceFromJSON(s)
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected nested sequence, got %T", v)
	}
	s := seqJSON{}
	if props, ok := obj["props"].([]interface{}); ok {
		for _, pv := range props {
			pm, ok := pv.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := pm["name"].(string)
			kind, err := asInt64(pm["kind"])
			if err != nil {
				return nil, err
			}
			s.Props = append(s.Props, Property{Name: name, Kind: Kind(kind)})
		}
	}
	if rows, ok := obj["rows"].([]interface{}); ok {
		for _, rv := range rows {
			rm, ok := rv.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("expected row object, got %T", rv)
			}
			s.Rows = append(s.Rows, rm)
		}
	}
	return sequenceFromJSON(s)
}
