package repositories

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/txn-lifecycle/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema files in name order. Every statement
// is idempotent, so Migrate is safe to run on each start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return err
	}

	for _, e := range entries {
		body, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			return err
		}
		_, err = db.ExecContext(ctx, string(body))
		logger.Log.Infow("migration", "file", e.Name(), "error", err)
		if err != nil {
			return fmt.Errorf("apply %s: %w", e.Name(), err)
		}
	}
	return nil
}

// oneLine collapses whitespace so that queries log on a single line.
func oneLine(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func logQuery(query string, args []any, result any, err error) {
	logger.Log.Infow(
		"query",
		"sql", oneLine(query),
		"args", args,
		"result", result,
		"error", err,
	)
}
