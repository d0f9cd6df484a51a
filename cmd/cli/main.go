package main

import (
	"os"
	"strings"

	"github.com/nimasrn/customer-ledger/internal/config"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/nimasrn/customer-ledger/pkg/pg"
)

// main applies pending migrations.
//
//	cli --env=.env --dir=./migrations
func main() {
	defer logger.Sync()

	envPath := argValue("--env=", ".env")
	if _, err := os.Stat(envPath); err != nil {
		logger.Warn("env file not found, using process environment", "path", envPath)
		envPath = ""
	}
	if err := config.Load(envPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Get()

	pgConf := pg.Config{
		User:     cfg.PostgresWriteUser,
		Host:     cfg.PostgresWriteHost,
		Port:     cfg.PostgresWritePort,
		Password: cfg.PostgresWritePassword,
		Database: cfg.PostgresWriteDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	}
	if err := pg.Migrate(pgConf, argValue("--dir=", cfg.MigrationsDir)); err != nil {
		logger.Error("migration: error running migrations", "error", err)
		os.Exit(1)
	}
}

// argValue returns the value of a --flag=value argument, or fallback when the
// flag is absent.
func argValue(prefix, fallback string) string {
	v := fallback
	for _, a := range os.Args[1:] {
		if strings.HasPrefix(a, prefix) {
			v = strings.TrimPrefix(a, prefix)
		}
	}
	return v
}
