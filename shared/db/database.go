package db

import (
	"database/sql"
)

// Database is a connection that must be opened before use and closed after.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
