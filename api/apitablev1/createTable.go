package apitablev1

import (
	"context"
	"net/http"

	"github.com/fulldump/metaview/service"
)

type createTableRequest struct {
	Name  string        `json:"name"`
	Props []PropertyDef `json:"props"`
}

func createTable(ctx context.Context, w http.ResponseWriter, input *createTableRequest) (*TableResponse, error) {

	s := GetServicer(ctx)

	props, err := properties(input.Props)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, err
	}

	table, err := s.CreateTable(input.Name, props)
	if err == service.ErrorTableAlreadyExists {
		w.WriteHeader(http.StatusConflict)
		return nil, err
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return &TableResponse{
		Name:  input.Name,
		Total: table.Seq.Size(),
	}, nil
}
