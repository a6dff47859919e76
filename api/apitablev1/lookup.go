package apitablev1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"
)

type lookupRequest struct {
	View string                 `json:"view"`
	Key  map[string]interface{} `json:"key"`
}

type lookupResponse struct {
	Pos   int                    `json:"pos"`
	Count int                    `json:"count"`
	Row   map[string]interface{} `json:"row,omitempty"`
}

// lookup resolves a key through a view index and, on a match, also returns
// the matching row.
func lookup(ctx context.Context, w http.ResponseWriter, input *lookupRequest) (*lookupResponse, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	pos, count, err := table.Lookup(input.View, input.Key)
	if err != nil {
		return nil, err
	}

	out := &lookupResponse{Pos: pos, Count: count}
	if pos >= 0 && count > 0 {
		row, err := table.Row(input.View, pos)
		if err != nil {
			return nil, err
		}
		out.Row = jsonNormalize(row)
	}
	return out, nil
}
