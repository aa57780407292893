package recon

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexfone/invtrack/internal/models"
)

// ErrSyncInProgress is returned when a sync trigger collides with a run
// that is still in progress. Triggers are rejected, never queued.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// Snapshot is one fetched external device list
type Snapshot struct {
	Items []models.InventoryItem
	// SourceRows is the raw row count in the source, kept for drift
	// visibility against the destination table.
	SourceRows int
	// ParseErrors counts source rows that could not be parsed into an item
	ParseErrors int
}

// SnapshotSource fetches the current external device list
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
}

// OutboundRecord is one entry from the externally-sourced outbound list
type OutboundRecord struct {
	IMEI      string
	Reference string // carrier tracking ref or order number, freeform
}

// OutboundSource fetches the list of IMEIs believed to have shipped
type OutboundSource interface {
	FetchOutboundList(ctx context.Context) ([]OutboundRecord, error)
}

// RetryableError wraps a transient fetch failure (network, timeout, 5xx).
// The run is still marked failed, but the caller knows a retry is sane.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is (or wraps) a transient fetch failure
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
