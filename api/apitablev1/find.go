package apitablev1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fulldump/box"

	"github.com/fulldump/metaview/database"
)

func find(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	input := struct {
		Mode string
	}{
		Mode: "fullscan",
	}
	err = json.Unmarshal(requestBody, &input)
	if err != nil {
		return err
	}

	f, exist := findModes[input.Mode]
	if !exist {
		box.GetResponse(ctx).WriteHeader(http.StatusBadRequest)
		return fmt.Errorf("bad mode '%s', must be [%s]", input.Mode, strings.Join(GetKeys(findModes), "|"))
	}

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	table, err := s.GetTable(tableName)
	if err != nil {
		return err // todo: handle/wrap this properly
	}

	return f(requestBody, table, writeRow(w))
}

var findModes = map[string]func(input []byte, table *database.Table, f func(values map[string]interface{})) error{
	"fullscan": traverseFullscan,
	"lookup":   traverseLookup,
}

func writeRow(w http.ResponseWriter) func(values map[string]interface{}) {
	e := json.NewEncoder(w)
	return func(values map[string]interface{}) {
		e.Encode(values)
	}
}
