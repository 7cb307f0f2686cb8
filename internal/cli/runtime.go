package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/simplekeystore/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/simplekeystore/internal/application"
	"github.com/ericfisherdev/simplekeystore/internal/config"
	"github.com/ericfisherdev/simplekeystore/internal/crypto"
	keystorelog "github.com/ericfisherdev/simplekeystore/internal/log"
)

// GlobalOptions holds the persistent root flags.
type GlobalOptions struct {
	ConfigPath string
	DBPath     string
	Name       string
	LogLevel   string
	JSON       bool
	NoColor    bool
}

type commandDeps struct {
	out      io.Writer
	errOut   io.Writer
	build    BuildInfo
	globals  *GlobalOptions
	env      map[string]string
	now      func() time.Time
	prompter prompter
}

// session is an open store with its services, valid for one command.
type session struct {
	cfg       config.Config
	logger    *slog.Logger
	keys      *application.KeyService
	usability *application.UsabilityService

	db        *sqliteadapter.DB
	cipher    *crypto.Cipher
	logCloser io.Closer
}

func (d commandDeps) loadOptions() config.LoadOptions {
	opts := config.LoadOptions{Env: d.env}
	if d.globals == nil {
		return opts
	}
	opts.ConfigPath = strings.TrimSpace(d.globals.ConfigPath)
	if v := strings.TrimSpace(d.globals.DBPath); v != "" {
		opts.Flags.DBPath = &v
	}
	if v := strings.TrimSpace(d.globals.Name); v != "" {
		opts.Flags.Name = &v
	}
	if v := strings.TrimSpace(d.globals.LogLevel); v != "" {
		opts.Flags.LogLevel = &v
	}
	return opts
}

func (d commandDeps) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

// openSession loads configuration, resolves the master key and opens the
// store. Close must be called on success.
func openSession(ctx context.Context, deps commandDeps) (*session, error) {
	opts := deps.loadOptions()
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := keystorelog.New(cfg.Logging, deps.errOut)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, logCloser: logCloser}

	encoded, err := config.ResolveMasterKey(opts)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	masterKey, err := crypto.ParseMasterKey(encoded)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.cipher, err = crypto.NewCipher(masterKey)
	clear(masterKey)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	dbPath := cfg.DatabasePath()
	s.db, err = sqliteadapter.NewDB(ctx, dbPath)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := sqliteadapter.Prepare(ctx, s.db, s.cipher); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Debug("keystore opened", "path", dbPath)

	store := sqliteadapter.NewKeyRepo(s.db, s.cipher)
	s.keys = application.NewKeyService(store, logger)
	s.usability = application.NewUsabilityService(store)
	return s, nil
}

func (s *session) Close() error {
	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if s.cipher != nil {
		s.cipher.Destroy()
	}
	if s.logCloser != nil {
		if err := s.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}

// withSession runs fn against an open store and maps any failure to an exit
// code.
func withSession(cmd *cobra.Command, deps commandDeps, fn func(context.Context, *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, deps)
	if err != nil {
		return mapCommandError(err)
	}

	runErr := fn(ctx, s)
	if runErr != nil {
		s.logger.Debug("command failed", "command", cmd.CommandPath(), "error", runErr)
	}
	closeErr := s.Close()
	if runErr != nil {
		return mapCommandError(runErr)
	}
	return mapCommandError(closeErr)
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
