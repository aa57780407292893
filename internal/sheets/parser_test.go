package sheets

import (
	"testing"

	"github.com/nexfone/invtrack/internal/models"
)

func row(cells ...string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

func TestParseRows_HeaderMapping(t *testing.T) {
	values := [][]interface{}{
		row("IMEI", "Model", "GB", "Colour", "Lock Status", "Grade", "Supplier", "Carton", "Location", "Status"),
		row("356938035643809", "iPhone 13", "128GB", "Blue", "Unlocked", "A", "B2406", "MC-17", "WH-1", "In Stock"),
	}

	snap, err := ParseRows(values)
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if snap.SourceRows != 1 || len(snap.Items) != 1 {
		t.Fatalf("Expected one parsed row, got %d/%d", snap.SourceRows, len(snap.Items))
	}

	item := snap.Items[0]
	if item.IMEI != "356938035643809" {
		t.Errorf("IMEI wrong: %s", item.IMEI)
	}
	if item.Model != "iPhone 13" || item.Storage != "128GB" || item.Color != "Blue" {
		t.Errorf("Attributes wrong: %+v", item)
	}
	if item.LockStatus != "Unlocked" || item.Grade != "A" {
		t.Errorf("Lock/grade wrong: %+v", item)
	}
	if item.Batch != "B2406" || item.MasterCarton != "MC-17" || item.Location != "WH-1" {
		t.Errorf("Labels wrong: %+v", item)
	}
	if item.Status != models.ItemStatusInStock {
		t.Errorf("Status not normalized: %s", item.Status)
	}
}

func TestParseRows_EmptyAndBrokenRows(t *testing.T) {
	values := [][]interface{}{
		row("imei", "model"),
		row("", ""),                     // fully empty, ignored
		row("", "iPhone 12"),            // no IMEI cell, parse error
		row("490154203237518", "Pixel"), // fine
	}

	snap, err := ParseRows(values)
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if snap.SourceRows != 2 {
		t.Errorf("Empty row must not count as a source row, got %d", snap.SourceRows)
	}
	if snap.ParseErrors != 1 {
		t.Errorf("Expected 1 parse error, got %d", snap.ParseErrors)
	}
	if len(snap.Items) != 1 || snap.Items[0].IMEI != "490154203237518" {
		t.Errorf("Unexpected items: %+v", snap.Items)
	}
}

func TestParseRows_MissingIMEIColumnIsFatal(t *testing.T) {
	values := [][]interface{}{
		row("model", "grade"),
		row("iPhone 13", "A"),
	}
	if _, err := ParseRows(values); err == nil {
		t.Fatal("Header without IMEI column must be a fatal error")
	}
}

func TestParseRows_EmptySheetIsFatal(t *testing.T) {
	if _, err := ParseRows(nil); err == nil {
		t.Fatal("Empty sheet must be a fatal error")
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"":         "in_stock",
		"In Stock": "in_stock",
		"SOLD":     "shipped",
		"On Hold":  "reserved",
		"RMA":      "returned",
		"weird":    "weird",
	}
	for in, want := range cases {
		if got := normalizeStatus(in); got != want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
