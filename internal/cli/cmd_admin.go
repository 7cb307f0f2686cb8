package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simplekeystore/internal/crypto"
)

func newVerifyCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every stored key decrypts under the master key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				count, err := s.keys.Verify(ctx)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"ok": true, "records": count})
				}
				return printOK(deps.out, "%d records verified in %s", count, s.cfg.DatabasePath())
			})
		},
	}
}

func newKeygenCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new master key",
		Long: "Generate a new master key. Store it in SIMPLE_KEYSTORE_KEY or as the password of " +
			"\"machine SIMPLE_KEYSTORE_KEY\" in ~/.netrc.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			key, err := crypto.GenerateMasterKey()
			if err != nil {
				return mapCommandError(err)
			}
			if deps.globals.JSON {
				return printJSON(deps.out, map[string]any{"master_key": key})
			}
			_, err = fmt.Fprintln(deps.out, key)
			return err
		},
	}
}

func newVersionCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if deps.globals.JSON {
				return printJSON(deps.out, deps.build)
			}
			_, err := fmt.Fprintf(deps.out, "version=%s commit=%s build_time=%s\n",
				deps.build.Version, deps.build.Commit, deps.build.BuildTime)
			return err
		},
	}
}
