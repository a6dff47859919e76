package apitablev1

import (
	"context"

	"github.com/fulldump/box"
)

type sizeRequest struct {
	View string `json:"view,omitempty"`
}

func size(ctx context.Context, input *sizeRequest) (interface{}, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	viewer, err := table.Viewer(input.View)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"size": viewer.Size(),
	}, nil
}
