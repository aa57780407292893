// Package erp implements the outbound source against the fulfilment ERP's
// XML-RPC endpoint. The ERP owns the authoritative record of which devices
// physically left custody; the matcher consumes that list to confirm
// shipments in current inventory.
package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/nexfone/invtrack/internal/recon"
)

// Config holds ERP connection settings
type Config struct {
	URL      string
	Database string
	Username string
	Password string
	// Model is the ERP model queried for outbound lines
	Model string
}

// Client talks XML-RPC to the ERP
type Client struct {
	cfg        Config
	uid        int
	commonURL  string
	objectURL  string
	httpClient *http.Client
}

// outboundLine mirrors the fields fetched per outbound record
type outboundLine struct {
	IMEI      string `json:"imei"`
	Reference string `json:"reference"`
}

// NewClient creates a new ERP client
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "stock.outbound.line"
	}
	return &Client{
		cfg:        cfg,
		commonURL:  fmt.Sprintf("%s/xmlrpc/2/common", cfg.URL),
		objectURL:  fmt.Sprintf("%s/xmlrpc/2/object", cfg.URL),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate logs in and caches the user id
func (c *Client) Authenticate() (int, error) {
	client, err := xmlrpc.NewClient(c.commonURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.cfg.Database, c.cfg.Username, c.cfg.Password, make([]interface{}, 0)}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return 0, &recon.RetryableError{Err: fmt.Errorf("erp authentication failed: %w", err)}
	}

	c.uid = uid
	return uid, nil
}

// FetchOutboundList pulls the outbound IMEI list via search_read.
// Implements recon.OutboundSource.
func (c *Client) FetchOutboundList(ctx context.Context) ([]recon.OutboundRecord, error) {
	if c.uid == 0 {
		if _, err := c.Authenticate(); err != nil {
			return nil, err
		}
	}

	client, err := xmlrpc.NewClient(c.objectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{
		c.cfg.Database,
		c.uid,
		c.cfg.Password,
		c.cfg.Model,
		"search_read",
		[]interface{}{[]interface{}{}},
		map[string]interface{}{
			"fields": []string{"imei", "reference"},
			"limit":  10000,
			"offset": 0,
		},
	}

	var rawResult []map[string]interface{}
	if err := client.Call("execute_kw", args, &rawResult); err != nil {
		if ctx.Err() != nil {
			return nil, &recon.RetryableError{Err: ctx.Err()}
		}
		return nil, &recon.RetryableError{Err: fmt.Errorf("erp search_read failed: %w", err)}
	}

	// Convert raw maps to typed lines via JSON round-trip (same approach
	// the XML-RPC library expects for loosely-typed responses)
	jsonData, err := json.Marshal(rawResult)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal erp result: %w", err)
	}
	var lines []outboundLine
	if err := json.Unmarshal(jsonData, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal erp result: %w", err)
	}

	records := make([]recon.OutboundRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, recon.OutboundRecord{IMEI: l.IMEI, Reference: l.Reference})
	}
	return records, nil
}
