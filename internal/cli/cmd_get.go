package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

func newGetCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print the key stored under a unique name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				secret, err := s.keys.SecretByName(ctx, args[0])
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"name": args[0], "key": secret})
				}
				_, err = fmt.Fprintln(deps.out, secret)
				return err
			})
		},
	}
}

func newShowCommand(deps commandDeps) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				rec, err := s.keys.Get(ctx, id)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, newRecordView(*rec, reveal))
				}
				_, err = fmt.Fprintln(deps.out, Tabulate([]model.KeyRecord{*rec}, AllHeaders, reveal))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show the full key instead of a masked one")
	return cmd
}

func newFindKeyCommand(deps commandDeps) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "find-key",
		Short: "Find the record holding a key",
		Long:  "Find the record holding a key. Every stored key is decrypted and compared, so this is linear in the store size.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := readSecret(key, cmd.InOrStdin(), "key")
			if err != nil {
				return mapCommandError(err)
			}
			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				rec, err := s.keys.FindByKey(ctx, secret)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, newRecordView(*rec, false))
				}
				_, err = fmt.Fprintln(deps.out, Tabulate([]model.KeyRecord{*rec}, DefaultHeaders, false))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "The key to look for; read from stdin when absent")
	return cmd
}
