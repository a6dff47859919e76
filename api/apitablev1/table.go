package apitablev1

import (
	"fmt"

	"github.com/fulldump/metaview/store"
)

type TableResponse struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	Views int    `json:"views"`
}

// PropertyDef is the wire shape of a column definition, with the kind
// spelled out instead of encoded.
type PropertyDef struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (p PropertyDef) property() (store.Property, error) {
	switch p.Kind {
	case "int":
		return store.Int(p.Name), nil
	case "string":
		return store.String(p.Name), nil
	case "bytes":
		return store.Bytes(p.Name), nil
	case "view":
		return store.View(p.Name), nil
	}
	return store.Property{}, fmt.Errorf("unknown kind '%s', must be [int|string|bytes|view]", p.Kind)
}

func properties(defs []PropertyDef) ([]store.Property, error) {
	props := []store.Property{}
	for _, d := range defs {
		p, err := d.property()
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}
