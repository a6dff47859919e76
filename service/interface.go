package service

import (
	"errors"

	"github.com/fulldump/metaview/database"
	"github.com/fulldump/metaview/store"
)

var ErrorTableNotFound = errors.New("table not found")

type Servicer interface {
	CreateTable(name string, props []store.Property) (*database.Table, error)
	GetTable(name string) (*database.Table, error)
	ListTables() []*TableInfo
	DropTable(name string) error
}
