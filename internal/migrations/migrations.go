// Package migrations embeds the ClickHouse schema managed by goose.
package migrations

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Up applies every pending migration.
func Up(db *sql.DB) error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("clickhouse"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
