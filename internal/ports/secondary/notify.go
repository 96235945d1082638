package secondary

import "context"

// MismatchReport is the payload of a dealer-check escalation email.
type MismatchReport struct {
	ChassisNo       string
	SAPData         string
	ScheduledDealer string
	ReallocatedTo   string
	Customer        string
	Model           string
	StatusCheck     string
	DealerCheck     string
	GRDays          int
}

// Notifier defines the secondary port for outbound escalation email.
type Notifier interface {
	// SendReportEmail delivers a mismatch report. Best effort.
	SendReportEmail(ctx context.Context, report MismatchReport) error
}

// ExportSheet is one named table of an export.
type ExportSheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Exporter writes tables to files.
type Exporter interface {
	// Export writes the sheets using base as the file name stem and returns the files written.
	Export(ctx context.Context, base string, sheets []ExportSheet) ([]string, error)
}
