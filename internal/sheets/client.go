// Package sheets implements the snapshot source against the Google Sheets
// API: the supplier-maintained spreadsheet is the external system of record
// that reconciliation mirrors into the local store.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/nexfone/invtrack/internal/recon"
)

// Config holds spreadsheet access settings
type Config struct {
	SpreadsheetID   string
	ReadRange       string // e.g. "Inventory!A:J", first row is the header
	CredentialsFile string // service account JSON; APIKey used when empty
	APIKey          string
}

// Client fetches and parses the inventory sheet
type Client struct {
	svc *sheetsapi.Service
	cfg Config
}

// NewClient builds the Sheets API client
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	if cfg.ReadRange == "" {
		cfg.ReadRange = "Inventory!A:K"
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		opts = append(opts, option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		return nil, fmt.Errorf("sheets: either credentials file or api key is required")
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{svc: svc, cfg: cfg}, nil
}

// FetchSnapshot reads the configured range and parses it into inventory
// items. Transport failures and API 5xx/429 responses are wrapped as
// retryable; auth and not-found errors are fatal.
func (c *Client) FetchSnapshot(ctx context.Context) (*recon.Snapshot, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, c.cfg.ReadRange).Context(ctx).Do()
	if err != nil {
		return nil, classifyFetchError(err)
	}
	return ParseRows(resp.Values)
}

// classifyFetchError separates transient from fatal fetch failures
func classifyFetchError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code >= 500 || gerr.Code == 429 {
			return &recon.RetryableError{Err: fmt.Errorf("sheets api: %w", err)}
		}
		return fmt.Errorf("sheets api: %w", err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return &recon.RetryableError{Err: fmt.Errorf("sheets api: %w", err)}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &recon.RetryableError{Err: fmt.Errorf("sheets api: %w", err)}
	}
	return fmt.Errorf("sheets api: %w", err)
}
