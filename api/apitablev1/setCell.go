package apitablev1

import (
	"context"

	"github.com/fulldump/box"
)

type setCellRequest struct {
	View   string      `json:"view,omitempty"`
	Row    int         `json:"row"`
	Column string      `json:"column"`
	Value  interface{} `json:"value"`
}

// setCell assigns one cell through a view. On a hash view, writing a key
// column can delete the row that already carried the new key value; callers
// updating several cells of one row must look the row up again after every
// key write.
func setCell(ctx context.Context, input *setCellRequest) (interface{}, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	err = table.Set(input.View, input.Row, input.Column, input.Value)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"size": table.Seq.Size(),
	}, nil
}
