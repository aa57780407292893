package models

import (
	"time"

	"gorm.io/datatypes"
)

// MovementType classifies one detected device transition
type MovementType string

const (
	MovementAdded         MovementType = "added"
	MovementShipped       MovementType = "shipped"
	MovementTransferred   MovementType = "transferred"
	MovementGradeChanged  MovementType = "grade_changed"
	MovementStatusChanged MovementType = "status_changed"
	MovementRemoved       MovementType = "removed"
)

// MovementSource identifies which path produced a ledger entry
type MovementSource string

const (
	SourceSheetSync    MovementSource = "sheet_sync"
	SourceOutboundSync MovementSource = "outbound_sync"
	SourceManual       MovementSource = "manual"
)

// Movement is one immutable ledger entry: a single detected state transition
// for a single device. The ledger is append-only; rows are never updated or
// deleted. Seq is a monotonic insertion counter used as the stable tie-break
// when several movements share the same PerformedAt timestamp.
//
// The IMEI column is deliberately not a DB-enforced foreign key: a movement
// may reference a device that was later removed from current inventory.
type Movement struct {
	ID           string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Seq          int64          `gorm:"autoIncrement;uniqueIndex" json:"seq"`
	MovementType MovementType   `gorm:"type:varchar(20);not null;index" json:"movementType"`
	IMEI         string         `gorm:"column:imei;type:varchar(15);not null;index" json:"imei"`
	FromStatus   string         `json:"fromStatus,omitempty"`
	ToStatus     string         `json:"toStatus,omitempty"`
	FromGrade    string         `json:"fromGrade,omitempty"`
	ToGrade      string         `json:"toGrade,omitempty"`
	FromLock     string         `json:"fromLock,omitempty"`
	ToLock       string         `json:"toLock,omitempty"`
	FromLocation string         `json:"fromLocation,omitempty"`
	ToLocation   string         `json:"toLocation,omitempty"`
	Source       MovementSource `gorm:"type:varchar(20);not null;index" json:"source"`
	PerformedBy  *string        `gorm:"type:uuid" json:"performedBy,omitempty"`
	PerformedAt  time.Time      `gorm:"not null;index" json:"performedAt"`
	Notes        string         `gorm:"type:text" json:"notes,omitempty"`
	Snapshot     datatypes.JSON `gorm:"type:jsonb" json:"snapshot,omitempty"` // full before/after record for audit
	CreatedAt    time.Time      `json:"-"`
}

// TableName specifies the table name for Movement
func (Movement) TableName() string {
	return "movements"
}
