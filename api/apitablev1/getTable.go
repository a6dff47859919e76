package apitablev1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/metaview/service"
)

func getTable(ctx context.Context, w http.ResponseWriter) (*TableResponse, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	table, err := s.GetTable(tableName)
	if err == service.ErrorTableNotFound {
		w.WriteHeader(http.StatusNotFound)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return &TableResponse{
		Name:  tableName,
		Total: table.Seq.Size(),
		Views: len(table.Views),
	}, nil
}
