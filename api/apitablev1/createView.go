package apitablev1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/metaview/database"
)

type createViewRequest struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	NumKeys int      `json:"num_keys,omitempty"`
	Props   []string `json:"props,omitempty"`
	Unique  bool     `json:"unique,omitempty"`
}

func createView(ctx context.Context, w http.ResponseWriter, input *createViewRequest) (interface{}, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	err = table.CreateView(&database.ViewDef{
		Name:    input.Name,
		Kind:    input.Kind,
		NumKeys: input.NumKeys,
		Props:   input.Props,
		Unique:  input.Unique,
	})
	if err == database.ErrorViewAlreadyExists {
		w.WriteHeader(http.StatusConflict)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return input, nil
}
