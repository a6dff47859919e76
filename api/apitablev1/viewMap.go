package apitablev1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulldump/box"
)

// viewMap streams the persisted index map of a hash or indexed view, mostly
// for inspection and offline tooling. The layout is the sequence JSON
// format of the store codec.
func viewMap(ctx context.Context, w http.ResponseWriter) error {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	viewName := box.GetUrlParameter(ctx, "viewName")

	table, err := s.GetTable(tableName)
	if err != nil {
		return err
	}

	def, exist := table.Views[viewName]
	if !exist {
		w.WriteHeader(http.StatusNotFound)
		return fmt.Errorf("view '%s' not found", viewName)
	}

	m := def.MapSequence()
	if m == nil {
		w.WriteHeader(http.StatusBadRequest)
		return fmt.Errorf("view '%s' has no index map", viewName)
	}

	return table.WriteMap(w, viewName)
}
