package apitablev1

import (
	"context"

	"github.com/fulldump/box"
)

func listViews(ctx context.Context) (interface{}, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	result := []interface{}{}
	for _, name := range GetKeys(table.Views) {
		result = append(result, table.Views[name])
	}

	return result, nil
}
