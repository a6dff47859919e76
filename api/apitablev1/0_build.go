package apitablev1

import (
	"github.com/fulldump/box"

	"github.com/fulldump/metaview/service"
)

func BuildV1Table(v1 *box.R, s service.Servicer) *box.R {

	tables := v1.Resource("/tables").
		WithActions(
			box.Get(listTables),
			box.Post(createTable),
		)

	v1.Resource("/tables/{tableName}").
		WithActions(
			box.Get(getTable),
			box.ActionPost(insert),
			box.ActionPost(find),
			box.ActionPost(lookup),
			box.ActionPost(remove),
			box.ActionPost(setCell),
			box.ActionPost(dropTable),
			box.ActionPost(createView),
			box.ActionPost(listViews),
			box.ActionPost(dropView),
			box.ActionPost(size),
		)

	v1.Resource("/tables/{tableName}/views/{viewName}/map").
		WithActions(
			box.Get(viewMap),
		)

	return tables
}
