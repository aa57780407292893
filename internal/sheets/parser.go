package sheets

import (
	"fmt"
	"strings"

	"github.com/nexfone/invtrack/internal/models"
	"github.com/nexfone/invtrack/internal/recon"
)

// headerAliases maps the column names suppliers actually type to the item
// field they mean. Matching is case-insensitive after trimming.
var headerAliases = map[string]string{
	"imei":          "imei",
	"model":         "model",
	"device":        "model",
	"storage":       "storage",
	"gb":            "storage",
	"capacity":      "storage",
	"color":         "color",
	"colour":        "color",
	"lock":          "lockStatus",
	"lock status":   "lockStatus",
	"carrier":       "lockStatus",
	"grade":         "grade",
	"batch":         "batch",
	"supplier":      "batch",
	"master carton": "masterCarton",
	"carton":        "masterCarton",
	"mc":            "masterCarton",
	"location":      "location",
	"site":          "location",
	"status":        "status",
}

// ParseRows turns the raw sheet values (header row first) into a snapshot.
// Rows that are entirely empty are ignored; rows without an IMEI cell are
// counted as parse errors. IMEI syntax itself is validated downstream by
// the diff engine, which owns the malformed-IMEI statistic.
func ParseRows(values [][]interface{}) (*recon.Snapshot, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("sheet is empty: no header row")
	}

	cols := make(map[string]int)
	for i, h := range values[0] {
		name := strings.ToLower(strings.TrimSpace(fmt.Sprint(h)))
		if field, ok := headerAliases[name]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["imei"]; !ok {
		return nil, fmt.Errorf("sheet header has no IMEI column")
	}

	snap := &recon.Snapshot{}
	for _, row := range values[1:] {
		if rowEmpty(row) {
			continue
		}
		snap.SourceRows++

		rawIMEI := cell(row, cols["imei"])
		if rawIMEI == "" {
			snap.ParseErrors++
			continue
		}

		item := models.InventoryItem{
			IMEI:         rawIMEI,
			Model:        cellByField(row, cols, "model"),
			Storage:      cellByField(row, cols, "storage"),
			Color:        cellByField(row, cols, "color"),
			LockStatus:   cellByField(row, cols, "lockStatus"),
			Grade:        cellByField(row, cols, "grade"),
			Batch:        cellByField(row, cols, "batch"),
			MasterCarton: cellByField(row, cols, "masterCarton"),
			Location:     cellByField(row, cols, "location"),
			Status:       models.ItemStatus(normalizeStatus(cellByField(row, cols, "status"))),
		}
		snap.Items = append(snap.Items, item)
	}

	return snap, nil
}

func cell(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func cellByField(row []interface{}, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok {
		return ""
	}
	return cell(row, idx)
}

func rowEmpty(row []interface{}) bool {
	for _, c := range row {
		if strings.TrimSpace(fmt.Sprint(c)) != "" {
			return false
		}
	}
	return true
}

// normalizeStatus maps the free-text status column onto the item enum.
// Unrecognized values pass through lowercase so the diff still sees them
// change; an empty cell means in_stock.
func normalizeStatus(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "in stock", "instock", "in_stock", "available":
		return string(models.ItemStatusInStock)
	case "shipped", "sold":
		return string(models.ItemStatusShipped)
	case "reserved", "hold", "on hold":
		return string(models.ItemStatusReserved)
	case "returned", "rma":
		return string(models.ItemStatusReturned)
	}
	return v
}
