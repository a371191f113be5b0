package service

import (
	"database/sql"

	"github.com/alexanderramin/redtally/internal/source"
	"github.com/alexanderramin/redtally/internal/source/redminedb"
)

func newDBSource(database *sql.DB) source.Source {
	return redminedb.New(database)
}
