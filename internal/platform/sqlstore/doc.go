// Package sqlstore provides the SQL implementations of the storage
// interfaces defined in the internal/store package. The same queries run on
// PostgreSQL (pgx) and SQLite (go-sqlite3) through sqlx; placeholders are
// rebound per driver and schema migrations are embedded per dialect and
// applied with goose.
//
// All timestamps are written in UTC and normalized to UTC on read.
package sqlstore
