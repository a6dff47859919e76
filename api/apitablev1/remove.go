package apitablev1

import (
	"context"

	"github.com/fulldump/box"
)

type removeRequest struct {
	View  string `json:"view,omitempty"`
	Pos   int    `json:"pos"`
	Count int    `json:"count"`
}

func remove(ctx context.Context, input *removeRequest) (interface{}, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	count := input.Count
	if count == 0 {
		count = 1
	}

	err = table.Remove(input.View, input.Pos, count)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"removed": count,
	}, nil
}
