// Package email sends dealer-check escalation reports through the EmailJS REST API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/dealerops/internal/config"
	"github.com/example/dealerops/internal/ports/secondary"
)

// Template defaults for fields the report leaves empty.
const (
	NotAvailable   = "N/A"
	NoReallocation = "No Reallocation"
	ToName         = "Dispatch Team"
	FromName       = "Dispatch Dashboard System"
)

// TemplateParams are the variables the EmailJS template expects.
type TemplateParams struct {
	ChassisNo       string `json:"chassis_no"`
	SAPData         string `json:"sap_data"`
	ScheduledDealer string `json:"scheduled_dealer"`
	ReallocatedTo   string `json:"reallocated_to"`
	Customer        string `json:"customer"`
	Model           string `json:"model"`
	StatusCheck     string `json:"status_check"`
	DealerCheck     string `json:"dealer_check"`
	GRDays          int    `json:"gr_days"`
	ReportDate      string `json:"report_date"`
	IssueSummary    string `json:"issue_summary"`
	ToName          string `json:"to_name"`
	FromName        string `json:"from_name"`
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// Notifier implements secondary.Notifier against EmailJS.
type Notifier struct {
	cfg    config.EmailJS
	client *http.Client
	now    func() time.Time
}

// NewNotifier creates an EmailJS notifier. A nil client uses a 15s-timeout default.
func NewNotifier(cfg config.EmailJS, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = config.DefaultEmailJSURL
	}
	return &Notifier{cfg: cfg, client: client, now: time.Now}
}

// BuildParams fills the template variables for a report.
func BuildParams(r secondary.MismatchReport, at time.Time) TemplateParams {
	return TemplateParams{
		ChassisNo:       r.ChassisNo,
		SAPData:         orDefault(r.SAPData, NotAvailable),
		ScheduledDealer: orDefault(r.ScheduledDealer, NotAvailable),
		ReallocatedTo:   orDefault(r.ReallocatedTo, NoReallocation),
		Customer:        orDefault(r.Customer, NotAvailable),
		Model:           orDefault(r.Model, NotAvailable),
		StatusCheck:     r.StatusCheck,
		DealerCheck:     r.DealerCheck,
		GRDays:          r.GRDays,
		ReportDate:      at.Format("02/01/2006, 15:04:05"),
		IssueSummary:    fmt.Sprintf("Dealer Check Mismatch detected for chassis %s", r.ChassisNo),
		ToName:          ToName,
		FromName:        FromName,
	}
}

// SendReportEmail posts the mismatch report.
func (n *Notifier) SendReportEmail(ctx context.Context, report secondary.MismatchReport) error {
	return n.send(ctx, BuildParams(report, n.now()))
}

// SendTestEmail posts a fixed test report to check the credentials.
func (n *Notifier) SendTestEmail(ctx context.Context) error {
	return n.send(ctx, TemplateParams{
		ChassisNo:       "TEST-001",
		SAPData:         "Test SAP Data",
		ScheduledDealer: "Test Dealer",
		ReallocatedTo:   "Test Reallocation",
		Customer:        "Test Customer",
		Model:           "Test Model",
		StatusCheck:     "Test",
		DealerCheck:     "Test",
		ReportDate:      n.now().Format("02/01/2006, 15:04:05"),
		IssueSummary:    "Email connection test",
		ToName:          "Test Recipient",
		FromName:        FromName,
	})
}

func (n *Notifier) send(ctx context.Context, params TemplateParams) error {
	if !n.cfg.Enabled() {
		return fmt.Errorf("emailjs is not configured")
	}

	body, err := json.Marshal(sendRequest{
		ServiceID:      n.cfg.ServiceID,
		TemplateID:     n.cfg.TemplateID,
		UserID:         n.cfg.PublicKey,
		AccessToken:    n.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("emailjs request failed: %d %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

var _ secondary.Notifier = (*Notifier)(nil)
