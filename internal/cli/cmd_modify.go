package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newDeleteCommand(deps commandDeps) *cobra.Command {
	var (
		filters filterFlags
		key     string
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete records by filter or by key",
		Long: "Delete every record matching the filters, or the record holding --key. " +
			"Deleting without any filter requires --all.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := filters.filter(cmd.Flags())
			byKey := cmd.Flags().Changed("key")
			switch {
			case byKey && !filter.IsEmpty():
				return usageErrorf("delete takes either --key or filters, not both")
			case byKey && key == "":
				return usageErrorf("delete --key must not be empty")
			case !byKey && filter.IsEmpty() && !all:
				return usageErrorf("delete without filters removes every record; pass --all to confirm")
			}

			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				var (
					count int64
					err   error
				)
				if byKey {
					count, err = s.keys.DeleteByKey(ctx, key)
				} else {
					count, err = s.keys.Delete(ctx, filter)
				}
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"deleted": count})
				}
				if count == 0 {
					return printWarn(deps.out, "no records deleted")
				}
				return printOK(deps.out, "%d records deleted", count)
			})
		},
	}
	filters.register(cmd.Flags())
	cmd.Flags().StringVar(&key, "key", "", "Delete the record holding this key")
	cmd.Flags().BoolVar(&all, "all", false, "Allow deleting every record")
	return cmd
}

func newUpdateCommand(deps commandDeps) *cobra.Command {
	var fields fieldFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the metadata of a record",
		Long:  "Change the metadata of a record. Only the flags given are changed; the key itself cannot be updated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			update, err := fields.fields(cmd.Flags(), deps.clock())
			if err != nil {
				return mapCommandError(err)
			}
			if update.IsEmpty() {
				return usageErrorf("update needs at least one of --name --expires --active --batch --source --login")
			}

			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				if err := s.keys.Update(ctx, id, update); err != nil {
					return err
				}
				rec, err := s.keys.Get(ctx, id)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, newRecordView(*rec, false))
				}
				return printOK(deps.out, "updated key record %d (%s)", rec.ID, rec.Name)
			})
		},
	}
	fields.register(cmd.Flags(), true)
	return cmd
}

func newDeactivateCommand(deps commandDeps) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Mark the record holding a key inactive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := readSecret(key, cmd.InOrStdin(), "key")
			if err != nil {
				return mapCommandError(err)
			}
			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				rec, err := s.keys.Deactivate(ctx, secret)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, newRecordView(*rec, false))
				}
				return printOK(deps.out, "deactivated key record %d (%s)", rec.ID, rec.Name)
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "The key to deactivate; read from stdin when absent")
	return cmd
}
