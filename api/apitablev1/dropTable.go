package apitablev1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/metaview/service"
)

func dropTable(ctx context.Context, w http.ResponseWriter) (interface{}, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	err := s.DropTable(tableName)
	if err == service.ErrorTableNotFound {
		w.WriteHeader(http.StatusNotFound)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"dropped": tableName,
	}, nil
}
