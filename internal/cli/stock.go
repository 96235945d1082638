package cli

import (
	gocontext "context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/dealerops/internal/app"
	"github.com/example/dealerops/internal/wire"
)

// StockCmd returns the stock command
func StockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock sheet: manually tracked chassis with operator notes",
	}
	cmd.AddCommand(stockListCmd())
	cmd.AddCommand(stockAddCmd())
	cmd.AddCommand(stockSetCmd())
	cmd.AddCommand(stockDispatchedCmd())
	cmd.AddCommand(stockDeleteCmd())
	return cmd
}

// openStockSheet creates a session and loads it. Callers must Close it.
func openStockSheet(ctx gocontext.Context) (*app.StockSheetServiceImpl, error) {
	svc := wire.NewStockSheetSession()
	if err := svc.Load(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("failed to load stock sheet: %w", err)
	}
	return svc, nil
}

func stockListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stock sheet joined with schedule and reallocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			hide, _ := cmd.Flags().GetBool("hide-dispatched")

			svc, err := openStockSheet(NewContext())
			if err != nil {
				return err
			}
			defer svc.Close()

			_, err = wire.StockSheetAdapter(svc).List(hide)
			return err
		},
	}
	cmd.Flags().Bool("hide-dispatched", false, "Hide rows marked dispatched")
	return cmd
}

func stockAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <chassis>",
		Short: "Add a chassis to the stock sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			svc, err := openStockSheet(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			return wire.StockSheetAdapter(svc).Add(ctx, args[0])
		},
	}
}

func stockSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <row>",
		Short: "Set the update text and/or year notes of a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update, yearNotes *string
			if cmd.Flags().Changed("update") {
				v, _ := cmd.Flags().GetString("update")
				update = &v
			}
			if cmd.Flags().Changed("year-notes") {
				v, _ := cmd.Flags().GetString("year-notes")
				yearNotes = &v
			}
			if update == nil && yearNotes == nil {
				return fmt.Errorf("--update or --year-notes is required")
			}

			ctx := NewContext()
			svc, err := openStockSheet(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			return wire.StockSheetAdapter(svc).Set(ctx, args[0], update, yearNotes)
		},
	}
	cmd.Flags().String("update", "", "Update text")
	cmd.Flags().String("year-notes", "", "Year notes")
	return cmd
}

func stockDispatchedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatched <row>",
		Short: "Toggle the dispatched flag of a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			svc, err := openStockSheet(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			return wire.StockSheetAdapter(svc).Dispatched(ctx, args[0])
		},
	}
}

func stockDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <row>",
		Short: "Remove a row from the stock sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			svc, err := openStockSheet(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			return wire.StockSheetAdapter(svc).Delete(ctx, args[0])
		},
	}
}
