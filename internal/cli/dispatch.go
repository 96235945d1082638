package cli

import (
	gocontext "context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/dealerops/internal/app"
	"github.com/example/dealerops/internal/ports/primary"
	"github.com/example/dealerops/internal/wire"
)

// DispatchCmd returns the dispatch command
func DispatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Dispatch dashboard: classify, filter and edit vehicles awaiting dispatch",
	}
	cmd.AddCommand(dispatchListCmd())
	cmd.AddCommand(dispatchStatsCmd())
	cmd.AddCommand(dispatchHoldCmd())
	cmd.AddCommand(dispatchCommentCmd())
	cmd.AddCommand(dispatchPickupCmd())
	cmd.AddCommand(dispatchReportCmd())
	cmd.AddCommand(dispatchErrorsCmd())
	cmd.AddCommand(dispatchExportCmd())
	cmd.AddCommand(dispatchWatchCmd())
	return cmd
}

// openDashboard creates a session and loads it. Callers must Close it.
func openDashboard(ctx gocontext.Context) (*app.DashboardServiceImpl, error) {
	svc := wire.NewDashboardSession()
	if err := svc.Load(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("failed to load dispatch data: %w", err)
	}
	return svc, nil
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("category", "c", "all", "Filter: all, ok, invalid, onHold, snowy, canBeDispatched")
	cmd.Flags().StringP("search", "s", "", "Case-insensitive search across columns and reallocation history")
	cmd.Flags().String("sort", "", "Sort column (chassis, days, customer, model, sap, scheduled, po, code, hold, status, dealer, realloc, comment, pickup)")
	cmd.Flags().Bool("desc", false, "Sort descending")
}

func viewRequest(cmd *cobra.Command) primary.ViewRequest {
	category, _ := cmd.Flags().GetString("category")
	search, _ := cmd.Flags().GetString("search")
	sortCol, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	return primary.ViewRequest{Category: category, Search: search, SortColumn: sortCol, Descending: desc}
}

func dispatchListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dispatch records, active first then on hold",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openDashboard(NewContext())
			if err != nil {
				return err
			}
			defer svc.Close()

			_, err = wire.DashboardAdapter(svc).List(viewRequest(cmd))
			return err
		},
	}
	addViewFlags(cmd)
	return cmd
}

func dispatchStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openDashboard(NewContext())
			if err != nil {
				return err
			}
			defer svc.Close()

			_, err = wire.DashboardAdapter(svc).Stats()
			return err
		},
	}
}

func dispatchHoldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hold <chassis>",
		Short: "Toggle the on-hold flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			svc, err := openDashboard(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			return wire.DashboardAdapter(svc).Hold(ctx, args[0])
		},
	}
}

func dispatchCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <chassis> <text>",
		Short: "Set the operator comment (empty text clears it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			svc, err := openDashboard(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			return wire.DashboardAdapter(svc).Comment(ctx, args[0], args[1])
		},
	}
}

func dispatchPickupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pickup <chassis> [time]",
		Short: "Schedule the estimated pickup",
		Long: `Schedule the estimated pickup. Accepted forms: RFC3339,
"2006-01-02T15:04", "2006-01-02 15:04" and "2006-01-02" (local time).
Times in the past are rejected. Use --clear to remove the pickup.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clearPickup, _ := cmd.Flags().GetBool("clear")
			pickup := ""
			if len(args) == 2 {
				pickup = args[1]
			}
			if pickup == "" && !clearPickup {
				return fmt.Errorf("a pickup time or --clear is required")
			}

			ctx := NewContext()
			svc, err := openDashboard(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			return wire.DashboardAdapter(svc).Pickup(ctx, args[0], pickup)
		},
	}
	cmd.Flags().Bool("clear", false, "Clear the scheduled pickup")
	return cmd
}

func dispatchReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <chassis>",
		Short: "Report a dealer-check mismatch to the dispatch team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			svc, err := openDashboard(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			_, err = wire.DashboardAdapter(svc).Report(ctx, args[0])
			return err
		},
	}
}

func dispatchErrorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors",
		Short: "List recorded mismatch reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := wire.Store().ListDispatchErrors(NewContext())
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("No mismatch reports recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCHASSIS\tDETAILS\tSTATUS\tTIMESTAMP")
			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.ChassisNo, r.ErrorDetails, r.Status, r.Timestamp)
			}
			return w.Flush()
		},
	}
}

func dispatchExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered view as Active and On Hold sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			base, _ := cmd.Flags().GetString("out")

			ctx := NewContext()
			svc, err := openDashboard(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			_, err = wire.DashboardAdapter(svc).Export(ctx, primary.ExportRequest{
				View:   viewRequest(cmd),
				Format: format,
				Base:   base,
			})
			return err
		},
	}
	addViewFlags(cmd)
	cmd.Flags().String("format", app.FormatXLSX, "Output format: xlsx or csv")
	cmd.Flags().StringP("out", "o", "", "File name stem (default dispatch_<date>)")
	return cmd
}

func dispatchWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-print dashboard counts on every change until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(NewContext(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := openDashboard(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			adapter := wire.DashboardAdapter(svc)
			if _, err := adapter.Stats(); err != nil {
				return err
			}

			err = svc.Subscribe(ctx, func() {
				fmt.Println()
				if _, err := adapter.Stats(); err != nil {
					wire.Logger().WithError(err).Warn("failed to render stats")
				}
			})
			if err != nil {
				return fmt.Errorf("failed to subscribe: %w", err)
			}

			watcher := wire.NewWatcher()
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer watcher.Stop()

			<-ctx.Done()
			return nil
		},
	}
}
