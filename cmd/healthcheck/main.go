// Command healthcheck exits 0 when the configured keystore opens under the
// master key and every record decrypts, and 1 otherwise. It is meant for
// container health probes and cron checks.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/awnumar/memguard"

	sqliteadapter "github.com/ericfisherdev/simplekeystore/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/simplekeystore/internal/application"
	"github.com/ericfisherdev/simplekeystore/internal/config"
	"github.com/ericfisherdev/simplekeystore/internal/crypto"
)

func main() {
	os.Exit(check())
}

func check() int {
	defer memguard.Purge()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := verify(ctx); err != nil {
		slog.Error("keystore health check failed", "error", err)
		return 1
	}
	return 0
}

func verify(ctx context.Context) error {
	opts := config.LoadOptions{}
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	encoded, err := config.ResolveMasterKey(opts)
	if err != nil {
		return err
	}
	masterKey, err := crypto.ParseMasterKey(encoded)
	if err != nil {
		return err
	}
	cipher, err := crypto.NewCipher(masterKey)
	clear(masterKey)
	if err != nil {
		return err
	}
	defer cipher.Destroy()

	// Open only an existing store; a probe must not create one.
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.Prepare(ctx, db, cipher); err != nil {
		return err
	}

	count, err := application.NewKeyService(sqliteadapter.NewKeyRepo(db, cipher), slog.Default()).Verify(ctx)
	if err != nil {
		return err
	}
	slog.Debug("keystore healthy", "path", cfg.DatabasePath(), "records", count)
	return nil
}
