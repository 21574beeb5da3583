package testsupport

import (
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a private in-memory sqlite database. Each call gets its own
// named database so tests in one package never share tables.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
}
