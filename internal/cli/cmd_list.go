package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

func newListCommand(deps commandDeps) *cobra.Command {
	var (
		filters filterFlags
		sortBy  string
		reveal  bool
		wide    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := model.ParseSortOrder(sortBy)
			if err != nil {
				return mapCommandError(err)
			}
			filter := filters.filter(cmd.Flags())

			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				records, err := s.keys.List(ctx, filter, order)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, newRecordViews(records, reveal))
				}
				headers := DefaultHeaders
				if wide {
					headers = AllHeaders
				}
				_, err = fmt.Fprintln(deps.out, Tabulate(records, headers, reveal))
				return err
			})
		},
	}
	filters.register(cmd.Flags())
	cmd.Flags().StringVar(&sortBy, "sort", "", "Comma separated sort fields, e.g. usable,batch")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show full keys instead of masked ones")
	cmd.Flags().BoolVar(&wide, "wide", false, "Show every stored and derived column")
	return cmd
}

func newCountCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				count, err := s.keys.Count(ctx)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"count": count})
				}
				_, err = fmt.Fprintln(deps.out, count)
				return err
			})
		},
	}
}
