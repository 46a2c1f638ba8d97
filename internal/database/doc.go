// Package database opens the connection pools behind the ledger
// repositories: database/sql with the MySQL driver, or a pgx pool for
// PostgreSQL.
package database
