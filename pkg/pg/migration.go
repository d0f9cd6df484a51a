package pg

import (
	"fmt"

	_ "github.com/lib/pq"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found in dir.
func Migrate(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	before, err := goose.GetDBVersion(db)
	if err != nil {
		logger.Warn("could not read current schema version", "error", err)
	}
	if err = goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up %s: %w", dir, err)
	}
	after, _ := goose.GetDBVersion(db)
	logger.Info("migrations applied", "dir", dir, "from_version", before, "to_version", after)

	return nil
}
