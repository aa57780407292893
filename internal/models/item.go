package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemStatus defines the custody state of a device
type ItemStatus string

const (
	ItemStatusInStock  ItemStatus = "in_stock"
	ItemStatusShipped  ItemStatus = "shipped"
	ItemStatusReserved ItemStatus = "reserved"
	ItemStatusReturned ItemStatus = "returned"
)

// InventoryItem is the current-state row for one physical device.
// Identity key is the IMEI. Rows are mutated in place by reconciliation
// and only removed by the explicit bulk delete/clear operations.
// Convention: Go PascalCase -> DB snake_case (GORM auto) -> JSON camelCase
type InventoryItem struct {
	IMEI         string         `gorm:"primaryKey;column:imei;type:varchar(15)" json:"imei"`
	Model        string         `gorm:"index" json:"model"`
	Storage      string         `json:"storage"` // e.g. "128GB"
	Color        string         `json:"color"`
	LockStatus   string         `json:"lockStatus"` // e.g. "Unlocked", "AT&T"
	Grade        string         `gorm:"index" json:"grade"`
	Batch        string         `gorm:"index" json:"batch"` // supplier/batch label
	MasterCarton string         `json:"masterCarton"`
	Location     string         `gorm:"index" json:"location"`
	Status       ItemStatus     `gorm:"type:varchar(20);default:'in_stock';index" json:"status"`
	LastUpdated  time.Time      `json:"lastUpdated"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for InventoryItem
func (InventoryItem) TableName() string {
	return "inventory_items"
}
