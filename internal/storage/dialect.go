package storage

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// Dialect holds the SQL that differs between database engines.
type Dialect struct {
	Name         string
	Schema       []string
	Insert       string
	Upsert       string
	InsertIgnore string
	isConflict   func(error) bool
}

// IsConflict reports whether err is a primary key violation.
func (d Dialect) IsConflict(err error) bool {
	return err != nil && d.isConflict != nil && d.isConflict(err)
}

// SQLite is the dialect for github.com/mattn/go-sqlite3.
var SQLite = Dialect{
	Name: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
	},
	Insert: `INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)`,
	Upsert: `INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
	InsertIgnore: `INSERT OR IGNORE INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)`,
	isConflict: func(err error) bool {
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
	},
}

// MySQL is the dialect for github.com/go-sql-driver/mysql. Connections must
// use ClientFoundRows so an upsert of an unchanged row still counts as affected.
var MySQL = Dialect{
	Name: "mysql",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection VARCHAR(191) NOT NULL,
			id         VARCHAR(191) NOT NULL,
			body       JSON NOT NULL,
			updated_at TIMESTAMP(6) NOT NULL,
			PRIMARY KEY (collection, id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	Insert: `INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)`,
	Upsert: `INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = VALUES(updated_at)`,
	InsertIgnore: `INSERT IGNORE INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)`,
	isConflict: func(err error) bool {
		var mysqlErr *mysql.MySQLError
		return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
	},
}
