package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

var usabilityHeaders = []string{
	"id", "name", "source", "login", "batch", "active", "expiration_date", "expired", "usable", "key",
}

func newReportCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Usability reports",
	}
	cmd.AddCommand(
		newReportUsabilityCommand(deps),
		newReportCountsCommand(deps),
	)
	return cmd
}

func newReportUsabilityCommand(deps commandDeps) *cobra.Command {
	var (
		name   string
		sortBy string
	)
	cmd := &cobra.Command{
		Use:   "usability",
		Short: "List records with their usability, grouped by name, source, login and batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := model.ParseSortOrder(sortBy)
			if err != nil {
				return mapCommandError(err)
			}
			var namePtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}

			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				records, err := s.usability.RecordsForUsabilityReport(ctx, namePtr, order)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, newRecordViews(records, false))
				}
				_, err = fmt.Fprintln(deps.out, Tabulate(records, usabilityHeaders, false))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Only records with this name")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Comma separated sort fields (default name,source,login,batch,active,expiration_date)")
	return cmd
}

type countsView struct {
	Total    int                  `json:"total"`
	Usable   int                  `json:"usable"`
	Unusable int                  `json:"unusable"`
	Groups   []usabilityCountView `json:"groups"`
}

type usabilityCountView struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Login    string `json:"login"`
	Batch    string `json:"batch"`
	Usable   int    `json:"usable"`
	Unusable int    `json:"unusable"`
}

func newReportCountsCommand(deps commandDeps) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Count usable and unusable records per name, source, login and batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var namePtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}

			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				report, err := s.usability.UsabilityCountsReport(ctx, namePtr)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					view := countsView{
						Total:    report.Total,
						Usable:   report.Usable,
						Unusable: report.Unusable,
						Groups:   make([]usabilityCountView, 0, len(report.Counts)),
					}
					for _, c := range report.Counts {
						view.Groups = append(view.Groups, usabilityCountView{
							Name: c.Name, Source: c.Source, Login: c.Login, Batch: c.Batch,
							Usable: c.Usable, Unusable: c.Unusable,
						})
					}
					return printJSON(deps.out, view)
				}
				_, err = fmt.Fprintln(deps.out, TabulateCounts(report))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Only records with this name")
	return cmd
}

func newNextCommand(deps commandDeps) *cobra.Command {
	var (
		filters    filterFlags
		showRecord bool
	)
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the usable key that expires soonest",
		Long:  "Print the usable key matching the filters that expires soonest. Keys that never expire are picked last.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := filters.filter(cmd.Flags())

			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				rec, err := s.usability.NextUsableKey(ctx, filter)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, newRecordView(*rec, !showRecord))
				}
				if showRecord {
					_, err = fmt.Fprintln(deps.out, Tabulate([]model.KeyRecord{*rec}, DefaultHeaders, false))
					return err
				}
				_, err = fmt.Fprintln(deps.out, rec.Key)
				return err
			})
		},
	}
	filters.register(cmd.Flags())
	cmd.Flags().BoolVar(&showRecord, "record", false, "Show the record with a masked key instead of the key")
	return cmd
}
