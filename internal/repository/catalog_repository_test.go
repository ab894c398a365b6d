package repository_test

import (
	"context"
	"testing"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/repository"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/testutil"
)

func TestCatalog_SaveAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)

	names := []string{
		"CAL Quantitative Equity Fund",
		"CAL Income Fund",
		"CAL Gilt Edged Fund",
	}

	if err := repo.SaveFunds(context.Background(), names); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.ListFunds()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(got) != len(names) {
		t.Fatalf("expected %d names, got %d", len(names), len(got))
	}
	// Listing order must be preserved.
	for i := range names {
		if got[i] != names[i] {
			t.Errorf("catalog[%d] = %q, want %q", i, got[i], names[i])
		}
	}
}

func TestCatalog_SaveReplacesWholesale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	ctx := context.Background()

	if err := repo.SaveFunds(ctx, []string{"Old Fund A", "Old Fund B"}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := repo.SaveFunds(ctx, []string{"New Fund"}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := repo.ListFunds()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || got[0] != "New Fund" {
		t.Errorf("expected replacement catalog, got %v", got)
	}
}

func TestCatalog_EmptyIsNotError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)

	got, err := repo.ListFunds()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty catalog, got %v", got)
	}
}
