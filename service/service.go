package service

import (
	"errors"
	"sort"

	"github.com/fulldump/metaview/database"
	"github.com/fulldump/metaview/store"
)

type Service struct {
	db *database.Database
}

func NewService(db *database.Database) *Service {
	return &Service{
		db: db,
	}
}

var ErrorTableAlreadyExists = errors.New("table already exists")

// TableInfo is the outward description of a table.
type TableInfo struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	Views int    `json:"views"`
}

func (s *Service) CreateTable(name string, props []store.Property) (*database.Table, error) {

	_, exist := s.db.Tables[name]
	if exist {
		return nil, ErrorTableAlreadyExists
	}

	return s.db.CreateTable(name, props)
}

func (s *Service) GetTable(name string) (*database.Table, error) {
	t, exist := s.db.Tables[name]
	if !exist {
		return nil, ErrorTableNotFound
	}

	return t, nil
}

func (s *Service) ListTables() []*TableInfo {
	result := []*TableInfo{}

	for name, t := range s.db.Tables {
		result = append(result, &TableInfo{
			Name:  name,
			Total: t.Seq.Size(),
			Views: len(t.Views),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

func (s *Service) DropTable(name string) error {
	_, exist := s.db.Tables[name]
	if !exist {
		return ErrorTableNotFound
	}

	return s.db.DropTable(name)
}
