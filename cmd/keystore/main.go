package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/joho/godotenv"

	"github.com/ericfisherdev/simplekeystore/internal/cli"
)

// Set through -ldflags at release build time.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Interrupts cancel ctx; the command unwinds and locked key memory is
	// purged on the way out.
	defer memguard.Purge()

	// A .env in the working directory may carry KEYSTORE_* and the master key.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, os.Stdout, os.Args[1:])
}

// execute runs one command line under ctx and returns its exit code.
func execute(ctx context.Context, out io.Writer, args []string) int {
	cmd := cli.NewRootCommand(out, cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	cmd.SetArgs(args)
	return cli.Execute(ctx, cmd)
}
