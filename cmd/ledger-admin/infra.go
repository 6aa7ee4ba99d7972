package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stewardly/ledger-api/internal/bootstrap"
)

// openDB connects to Postgres using the loaded configuration. The returned
// cleanup closes the connection and logs any close failure.
func openDB(cmdCtx *commandContext) (*sql.DB, func(), error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig:    cmdCtx.Config.Postgres,
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}

	cleanup := func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Error("close database failed", "error", cerr)
		}
	}
	return db, cleanup, nil
}

func runMigrate(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("migrate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, cleanup, err := openDB(cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultMigrationTimeout)
	defer cancel()

	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}
