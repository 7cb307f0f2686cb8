// Package cli implements the keystore command tree.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// NewRootCommand builds the keystore command tree writing to out, with logs
// and diagnostics on stderr.
func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	return newRootCommand(commandDeps{
		out:    out,
		errOut: os.Stderr,
		build:  build,
	})
}

func newRootCommand(deps commandDeps) *cobra.Command {
	globals := &GlobalOptions{}
	deps.globals = globals
	if deps.prompter == nil {
		deps.prompter = newHuhPrompter()
	}

	cmd := &cobra.Command{
		Use:           "keystore",
		Short:         "Local encrypted key store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if globals.NoColor {
				color.NoColor = true
			}
		},
	}
	cmd.SetOut(deps.out)
	cmd.SetErr(deps.errOut)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&globals.ConfigPath, "config", "", "Path to config.toml")
	flags.StringVar(&globals.DBPath, "db", "", "Path to the keystore database (overrides --store)")
	flags.StringVar(&globals.Name, "store", "", "Keystore name; the database is <store>.db")
	flags.StringVar(&globals.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.BoolVar(&globals.JSON, "json", false, "Print machine-readable JSON")
	flags.BoolVar(&globals.NoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newAddCommand(deps),
		newGetCommand(deps),
		newShowCommand(deps),
		newFindKeyCommand(deps),
		newListCommand(deps),
		newCountCommand(deps),
		newDeleteCommand(deps),
		newUpdateCommand(deps),
		newDeactivateCommand(deps),
		newReportCommand(deps),
		newNextCommand(deps),
		newVerifyCommand(deps),
		newKeygenCommand(deps),
		newManageCommand(deps),
		newVersionCommand(deps),
	)
	return cmd
}

// Execute runs cmd and returns the process exit code, printing any error to
// cmd's error stream.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitCodeSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Unknown commands and argument errors come straight from cobra.
		err = usageErrorf("%v", err)
	}
	printError(cmd.ErrOrStderr(), err)
	return ExitCodeOf(err)
}
