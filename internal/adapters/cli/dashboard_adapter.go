// Package cli contains thin output adapters that render primary services to a writer.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/dealerops/internal/ports/primary"
)

var (
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed)
	holdColor    = color.New(color.FgHiMagenta)
	flaggedColor = color.New(color.FgCyan)
)

// DashboardAdapter translates CLI operations to DashboardService calls.
type DashboardAdapter struct {
	service primary.DashboardService
	out     io.Writer
}

// NewDashboardAdapter creates a new DashboardAdapter with the given service.
func NewDashboardAdapter(service primary.DashboardService, out io.Writer) *DashboardAdapter {
	return &DashboardAdapter{service: service, out: out}
}

// List prints the filtered dispatch table, active rows first, then on-hold rows.
func (a *DashboardAdapter) List(req primary.ViewRequest) (*primary.DashboardView, error) {
	view, err := a.service.View(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build dispatch view: %w", err)
	}

	if len(view.Rows) == 0 {
		fmt.Fprintln(a.out, "No dispatch records match.")
		return view, nil
	}

	a.printRows("Active", view.Active)
	if len(view.OnHold) > 0 {
		fmt.Fprintln(a.out)
		a.printRows("On Hold", view.OnHold)
	}
	return view, nil
}

func (a *DashboardAdapter) printRows(title string, rows []*primary.DispatchRow) {
	fmt.Fprintf(a.out, "%s (%d)\n", title, len(rows))
	if len(rows) == 0 {
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHASSIS\tDAYS\tCUSTOMER\tMODEL\tSAP\tSCHEDULED\tREALLOCATION\tSTATUS\tDEALER\tPICKUP\tCOMMENT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			chassisLabel(r),
			daysLabel(r.GRToGIDays, r.DaysBand),
			dash(r.Customer),
			dash(r.Model),
			dash(r.SAPData),
			dash(r.ScheduledDealer),
			dash(r.ReallocatedTo),
			checkLabel(r.StatusCheck),
			checkLabel(r.DealerCheck),
			dash(r.EstimatedPickupAt),
			dash(r.Comment),
		)
	}
	w.Flush()
}

// Stats prints the dashboard cards.
func (a *DashboardAdapter) Stats() (*primary.DashboardStats, error) {
	stats, err := a.service.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	fmt.Fprintf(a.out, "Total:             %d\n", stats.Total)
	fmt.Fprintf(a.out, "Status OK:         %s\n", okColor.Sprint(stats.StatusOK))
	fmt.Fprintf(a.out, "Invalid:           %s\n", errColor.Sprint(stats.Invalid))
	fmt.Fprintf(a.out, "Snowy Stock:       %s\n", flaggedColor.Sprint(stats.FlaggedStock))
	fmt.Fprintf(a.out, "Can be dispatched: %s\n", okColor.Sprint(stats.DispatchEligible))
	fmt.Fprintf(a.out, "On hold:           %s\n", holdColor.Sprint(stats.OnHold))
	return stats, nil
}

// Reallocations prints the latest reallocation per chassis.
func (a *DashboardAdapter) Reallocations(req primary.ReallocationQuery) ([]*primary.ReallocationRow, error) {
	rows, err := a.service.Reallocations(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list reallocations: %w", err)
	}

	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No reallocations found.")
		return rows, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHASSIS\tCUSTOMER\tMODEL\tFROM\tTO\tPRODUCTION\tISSUE\tSUBMITTED")
	for _, r := range rows {
		submitted := r.Date
		if submitted == "" {
			submitted = r.SubmitTime
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ChassisNo,
			dash(r.Customer),
			dash(r.Model),
			dash(r.OriginalDealer),
			dash(r.ReallocatedTo),
			r.RegentProduction,
			dash(r.IssueType),
			dash(submitted),
		)
	}
	w.Flush()
	return rows, nil
}

// Hold toggles the hold flag and prints the resulting state.
func (a *DashboardAdapter) Hold(ctx context.Context, chassisNo string) error {
	if err := a.service.ToggleHold(ctx, chassisNo); err != nil {
		return fmt.Errorf("failed to toggle hold: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Hold toggled for %s\n", chassisNo)
	return nil
}

// Comment saves the operator comment.
func (a *DashboardAdapter) Comment(ctx context.Context, chassisNo, comment string) error {
	if err := a.service.SaveComment(ctx, chassisNo, comment); err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Comment saved for %s\n", chassisNo)
	return nil
}

// Pickup schedules or clears the estimated pickup.
func (a *DashboardAdapter) Pickup(ctx context.Context, chassisNo, pickupAt string) error {
	if err := a.service.SavePickup(ctx, chassisNo, pickupAt); err != nil {
		return fmt.Errorf("failed to save pickup: %w", err)
	}
	if pickupAt == "" {
		fmt.Fprintf(a.out, "✓ Pickup cleared for %s\n", chassisNo)
	} else {
		fmt.Fprintf(a.out, "✓ Pickup for %s set to %s\n", chassisNo, pickupAt)
	}
	return nil
}

// Report files a dealer-check mismatch report.
func (a *DashboardAdapter) Report(ctx context.Context, chassisNo string) (*primary.ReportResult, error) {
	result, err := a.service.ReportMismatch(ctx, chassisNo)
	if err != nil {
		return result, fmt.Errorf("failed to report mismatch: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Mismatch recorded for %s (%s)\n", result.ChassisNo, result.ErrorID)
	if result.EmailSent {
		fmt.Fprintln(a.out, "  Email sent to the dispatch team")
	} else {
		fmt.Fprintf(a.out, "  %s\n", warnColor.Sprint("Email not sent"))
	}
	return result, nil
}

// Export writes the filtered view and prints the files produced.
func (a *DashboardAdapter) Export(ctx context.Context, req primary.ExportRequest) ([]string, error) {
	files, err := a.service.Export(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to export: %w", err)
	}
	for _, f := range files {
		fmt.Fprintf(a.out, "✓ Wrote %s\n", f)
	}
	return files, nil
}

func chassisLabel(r *primary.DispatchRow) string {
	label := r.ChassisNo
	if r.OnHold {
		label += holdColor.Sprint(" [hold]")
	}
	switch {
	case r.State.Error != "":
		label += errColor.Sprint(" !")
	case r.State.Saving:
		label += warnColor.Sprint(" …")
	}
	return label
}

func daysLabel(days int, band string) string {
	switch band {
	case "green":
		return okColor.Sprint(days)
	case "yellow":
		return warnColor.Sprint(days)
	case "orange":
		return color.New(color.FgHiYellow).Sprint(days)
	default:
		return errColor.Sprint(days)
	}
}

func checkLabel(v string) string {
	switch v {
	case "OK":
		return okColor.Sprint(v)
	case "":
		return "-"
	default:
		return errColor.Sprint(v)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
