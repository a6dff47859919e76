package apitablev1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/metaview/database"
)

type dropViewRequest struct {
	Name string `json:"name"`
}

func dropView(ctx context.Context, w http.ResponseWriter, input *dropViewRequest) (interface{}, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	err = table.DropView(input.Name)
	if err == database.ErrorViewNotFound {
		w.WriteHeader(http.StatusNotFound)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return json.RawMessage(`{"dropped":"` + input.Name + `"}`), nil
}
