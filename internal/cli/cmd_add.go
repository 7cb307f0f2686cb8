package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

func newAddCommand(deps commandDeps) *cobra.Command {
	var (
		fields fieldFlags
		key    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Encrypt and store a new key",
		Long:  "Encrypt and store a new key. The key is read from --key or, if absent, from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(fields.name) == "" {
				return usageErrorf("add requires --name")
			}
			secret, err := readSecret(key, cmd.InOrStdin(), "key")
			if err != nil {
				return mapCommandError(err)
			}
			expiration, err := ParseExpiration(fields.expires, deps.clock())
			if err != nil {
				return mapCommandError(err)
			}

			newKey := model.NewKeyDefaults(fields.name, secret)
			newKey.Active = fields.active
			newKey.ExpirationEpochSeconds = expiration
			if cmd.Flags().Changed("batch") {
				newKey.Batch = model.Ptr(fields.batch)
			}
			if cmd.Flags().Changed("source") {
				newKey.Source = model.Ptr(fields.source)
			}
			if cmd.Flags().Changed("login") {
				newKey.Login = model.Ptr(fields.login)
			}

			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				id, err := s.keys.Add(ctx, newKey)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"id": id})
				}
				return printOK(deps.out, "added key record %d (%s)", id, newKey.Name)
			})
		},
	}
	fields.register(cmd.Flags(), true)
	cmd.Flags().StringVar(&key, "key", "", "The secret to store (prefer stdin; flags end up in shell history)")
	return cmd
}
