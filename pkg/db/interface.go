package db

import "database/sql"

// DBProvider gives access to a sql.DB handle, so the mirror can write to a
// plain Postgres server or to Supabase's Postgres without caring which.
type DBProvider interface {
	DB() *sql.DB
}
