// Package reports holds read-side projections over the current-state
// table. Everything here is recomputed on read and never persisted.
package reports

import (
	"github.com/nexfone/invtrack/internal/models"
)

// Summary is the dashboard stat view: totals by status plus the
// grade/model/storage/color grouping the stock table renders.
type Summary struct {
	TotalItems int                                             `json:"totalItems"`
	ByStatus   map[string]int                                  `json:"byStatus"`
	ByGrade    map[string]int                                  `json:"byGrade"`
	Groups     map[string]map[string]map[string]map[string]int `json:"groups"`
}

// BuildSummary projects the current inventory into the grouped view.
// Devices already shipped are excluded from the grouping (they are no
// longer stock) but still counted in the status totals.
func BuildSummary(items []models.InventoryItem) *Summary {
	s := &Summary{
		ByStatus: make(map[string]int),
		ByGrade:  make(map[string]int),
		Groups:   make(map[string]map[string]map[string]map[string]int),
	}

	for _, item := range items {
		s.TotalItems++
		s.ByStatus[string(item.Status)]++

		if item.Status == models.ItemStatusShipped {
			continue
		}
		s.ByGrade[item.Grade]++

		grade := orUnknown(item.Grade)
		model := orUnknown(item.Model)
		storage := orUnknown(item.Storage)
		color := orUnknown(item.Color)

		if s.Groups[grade] == nil {
			s.Groups[grade] = make(map[string]map[string]map[string]int)
		}
		if s.Groups[grade][model] == nil {
			s.Groups[grade][model] = make(map[string]map[string]int)
		}
		if s.Groups[grade][model][storage] == nil {
			s.Groups[grade][model][storage] = make(map[string]int)
		}
		s.Groups[grade][model][storage][color]++
	}

	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
