package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/dealerops/internal/ports/primary"
)

// StockSheetAdapter translates CLI operations to StockSheetService calls.
type StockSheetAdapter struct {
	service primary.StockSheetService
	out     io.Writer
}

// NewStockSheetAdapter creates a new StockSheetAdapter with the given service.
func NewStockSheetAdapter(service primary.StockSheetService, out io.Writer) *StockSheetAdapter {
	return &StockSheetAdapter{service: service, out: out}
}

// List prints the stock sheet and its dispatched count.
func (a *StockSheetAdapter) List(hideDispatched bool) (*primary.StockSheetView, error) {
	view, err := a.service.Rows(hideDispatched)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock sheet: %w", err)
	}

	fmt.Fprintf(a.out, "%d dispatched / %d total\n", view.Dispatched, view.Total)
	if len(view.Rows) == 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "No stock sheet rows.")
		fmt.Fprintln(a.out, "  dealerops stock add <chassis>")
		return view, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHASSIS\tMODEL\tSCHEDULED DEALER\tLATEST REALLOCATION\tCUSTOMER\tUPDATE\tYEAR NOTES\tDISPATCHED")
	for _, r := range view.Rows {
		chassis := r.ChassisNo
		if r.Dirty {
			chassis += warnColor.Sprint(" *")
		}
		dispatched := "-"
		if r.Dispatched {
			dispatched = okColor.Sprint("yes")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			chassis,
			dash(r.Model),
			dash(r.ScheduledDealer),
			dash(r.ReallocatedDealer),
			dash(r.Customer),
			dash(r.Update),
			dash(r.YearNotes),
			dispatched,
		)
	}
	w.Flush()
	return view, nil
}

// Add adds a chassis to the sheet.
func (a *StockSheetAdapter) Add(ctx context.Context, chassisNo string) error {
	if err := a.service.AddChassis(ctx, chassisNo); err != nil {
		return fmt.Errorf("failed to add chassis: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Chassis %s added to Stock Sheet\n", chassisNo)
	return nil
}

// Set drafts the given notes and saves them immediately.
// Nil leaves a field untouched.
func (a *StockSheetAdapter) Set(ctx context.Context, rowID string, update, yearNotes *string) error {
	if update != nil {
		if err := a.service.EditUpdate(ctx, rowID, *update); err != nil {
			return fmt.Errorf("failed to edit update: %w", err)
		}
	}
	if yearNotes != nil {
		if err := a.service.EditYearNotes(ctx, rowID, *yearNotes); err != nil {
			return fmt.Errorf("failed to edit year notes: %w", err)
		}
	}
	if err := a.service.Save(ctx, rowID); err != nil {
		return fmt.Errorf("failed to save row: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Saved %s\n", rowID)
	return nil
}

// Dispatched flips the dispatched flag of a row.
func (a *StockSheetAdapter) Dispatched(ctx context.Context, rowID string) error {
	if err := a.service.ToggleDispatched(ctx, rowID); err != nil {
		return fmt.Errorf("failed to toggle dispatched: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Dispatched status toggled for %s\n", rowID)
	return nil
}

// Delete removes a row.
func (a *StockSheetAdapter) Delete(ctx context.Context, rowID string) error {
	if err := a.service.Delete(ctx, rowID); err != nil {
		return fmt.Errorf("failed to delete row: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Removed %s from Stock Sheet\n", rowID)
	return nil
}
