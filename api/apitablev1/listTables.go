package apitablev1

import (
	"context"

	"github.com/fulldump/metaview/service"
)

func listTables(ctx context.Context) []*service.TableInfo {

	s := GetServicer(ctx)

	return s.ListTables()
}
