package apitablev1

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fulldump/box"
)

type insertRequest struct {
	View   string                 `json:"view,omitempty"`
	Values map[string]interface{} `json:"values"`
}

// insert streams records in: the body is a sequence of JSON objects, each
// inserted through the named view (or the raw table).
func insert(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return err // todo: handle/wrap this properly
	}

	jsonReader := json.NewDecoder(r.Body)
	jsonWriter := json.NewEncoder(w)

	for i := 0; true; i++ {
		item := insertRequest{}
		err := jsonReader.Decode(&item)
		if err == io.EOF {
			if i == 0 {
				w.WriteHeader(http.StatusNoContent)
			}
			return nil
		}
		if err != nil {
			if i == 0 {
				w.WriteHeader(http.StatusBadRequest)
			}
			return err
		}
		err = table.Insert(item.View, item.Values)
		if err != nil {
			if i == 0 {
				w.WriteHeader(http.StatusConflict)
			}
			return err
		}

		if i == 0 {
			w.WriteHeader(http.StatusCreated)
		}
		jsonWriter.Encode(item.Values)
	}

	return nil
}
