package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/dealerops/internal/adapters/snapshot"
	"github.com/example/dealerops/internal/wire"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <export.json>",
		Short: "Replace the store with a realtime-store export",
		Long: `Load a JSON export holding Dispatch, reallocation, schedule and
(optionally) dispatchingNote nodes. Dispatch, reallocation and schedule are
replaced; stock-sheet notes are replaced only when the export contains them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			snap, err := snapshot.DecodeFile(args[0])
			if err != nil {
				return err
			}
			if err := wire.Store().ReplaceAll(ctx, snap); err != nil {
				return fmt.Errorf("failed to import snapshot: %w", err)
			}

			fmt.Printf("✓ Imported %d dispatch records, %d reallocated chassis, %d schedule entries\n",
				len(snap.Dispatch), len(snap.Reallocations), len(snap.Schedule))
			if snap.StockSheet != nil {
				fmt.Printf("✓ Replaced stock sheet with %d rows\n", len(snap.StockSheet))
			}
			return nil
		},
	}
}
