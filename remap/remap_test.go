package remap

import (
	"github.com/fulldump/metaview/store"
)

// Shared helpers: records are (k int, v string) rows keyed on k.

func recordProps() []store.Property {
	return []store.Property{store.Int("k"), store.String("v")}
}

func record(k int, v string) store.Cursor {
	return store.Values(recordProps(), map[string]interface{}{"k": k, "v": v})
}

func key(k int) store.Cursor {
	return store.Values([]store.Property{store.Int("k")}, map[string]interface{}{"k": k})
}

func keyAt(seq store.Sequence, row int) int {
	b, _ := seq.Get(row, 0)
	return int(store.DecodeInt(b))
}

func valueAt(v Viewer, row int) string {
	b, _ := v.Get(row, 1)
	return string(b)
}
