package apitablev1

import (
	"encoding/json"
	"fmt"

	"github.com/SierraSoftworks/connor"

	"github.com/fulldump/metaview/database"
)

func traverseFullscan(input []byte, table *database.Table, f func(values map[string]interface{})) error {

	params := &struct {
		View   string
		Filter map[string]interface{}
		Skip   int64
		Limit  int64
	}{
		Filter: map[string]interface{}{},
		Skip:   0,
		Limit:  1,
	}
	err := json.Unmarshal(input, &params)
	if err != nil {
		return err
	}

	viewer, err := table.Viewer(params.View)
	if err != nil {
		return err
	}

	hasFilter := len(params.Filter) > 0

	skip := params.Skip
	limit := params.Limit
	for pos := 0; pos < viewer.Size(); pos++ {

		if limit == 0 {
			break
		}

		values, err := table.Row(params.View, pos)
		if err != nil {
			return err
		}
		values = jsonNormalize(values)

		if hasFilter {
			match, err := connor.Match(params.Filter, values)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}
			if !match {
				continue
			}
		}

		if skip > 0 {
			skip--
			continue
		}

		limit--
		f(values)
	}

	return nil
}

func traverseLookup(input []byte, table *database.Table, f func(values map[string]interface{})) error {

	params := &struct {
		View string
		Key  map[string]interface{}
	}{}
	err := json.Unmarshal(input, &params)
	if err != nil {
		return err
	}

	pos, count, err := table.Lookup(params.View, params.Key)
	if err != nil {
		return err
	}
	if pos < 0 {
		return fmt.Errorf("view '%s' cannot index this key, use a fullscan", params.View)
	}
	if count == 0 {
		return nil
	}

	values, err := table.Row(params.View, pos)
	if err != nil {
		return err
	}
	f(values)

	return nil
}
