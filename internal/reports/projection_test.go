package reports

import (
	"testing"

	"github.com/nexfone/invtrack/internal/models"
)

func item(imei, model, storage, color, grade string, status models.ItemStatus) models.InventoryItem {
	return models.InventoryItem{
		IMEI:    imei,
		Model:   model,
		Storage: storage,
		Color:   color,
		Grade:   grade,
		Status:  status,
	}
}

func TestBuildSummary_GroupsByGradeModelStorageColor(t *testing.T) {
	items := []models.InventoryItem{
		item("100000000000001", "iPhone 13", "128GB", "Black", "A", models.ItemStatusInStock),
		item("100000000000002", "iPhone 13", "128GB", "Black", "A", models.ItemStatusInStock),
		item("100000000000003", "iPhone 13", "256GB", "Blue", "A", models.ItemStatusInStock),
		item("100000000000004", "iPhone 12", "64GB", "White", "B+", models.ItemStatusInStock),
	}

	s := BuildSummary(items)

	if s.TotalItems != 4 {
		t.Fatalf("expected 4 total items, got %d", s.TotalItems)
	}
	if got := s.Groups["A"]["iPhone 13"]["128GB"]["Black"]; got != 2 {
		t.Errorf("expected 2 black 128GB iPhone 13 grade A, got %d", got)
	}
	if got := s.Groups["A"]["iPhone 13"]["256GB"]["Blue"]; got != 1 {
		t.Errorf("expected 1 blue 256GB, got %d", got)
	}
	if got := s.Groups["B+"]["iPhone 12"]["64GB"]["White"]; got != 1 {
		t.Errorf("expected 1 white iPhone 12, got %d", got)
	}
	if s.ByGrade["A"] != 3 || s.ByGrade["B+"] != 1 {
		t.Errorf("unexpected grade totals: %v", s.ByGrade)
	}
}

func TestBuildSummary_ShippedExcludedFromGroups(t *testing.T) {
	items := []models.InventoryItem{
		item("100000000000001", "iPhone 13", "128GB", "Black", "A", models.ItemStatusInStock),
		item("100000000000002", "iPhone 13", "128GB", "Black", "A", models.ItemStatusShipped),
	}

	s := BuildSummary(items)

	if s.TotalItems != 2 {
		t.Fatalf("expected shipped items in total count, got %d", s.TotalItems)
	}
	if s.ByStatus["shipped"] != 1 || s.ByStatus["in_stock"] != 1 {
		t.Errorf("unexpected status totals: %v", s.ByStatus)
	}
	if got := s.Groups["A"]["iPhone 13"]["128GB"]["Black"]; got != 1 {
		t.Errorf("shipped item should not be grouped, got count %d", got)
	}
}

func TestBuildSummary_BlankFieldsBucketAsUnknown(t *testing.T) {
	items := []models.InventoryItem{
		item("100000000000001", "", "", "", "", models.ItemStatusInStock),
	}

	s := BuildSummary(items)

	if got := s.Groups["unknown"]["unknown"]["unknown"]["unknown"]; got != 1 {
		t.Errorf("blank fields should bucket under unknown, got %d", got)
	}
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(nil)
	if s.TotalItems != 0 || len(s.Groups) != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
}
