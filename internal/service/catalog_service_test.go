package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/repository"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/testutil"
)

func TestListFundsDiscoversWhenCatalogEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mock := testutil.NewMockCALClient().
		WithDiscovery("CAL Income Fund", "CAL Balanced Fund", "CAL Money Market Fund")

	svc := NewCatalogService(repository.NewCatalogRepository(db), mock)

	names, err := svc.ListFunds(context.Background())
	if err != nil {
		t.Fatalf("ListFunds failed: %v", err)
	}

	want := []string{"CAL Income Fund", "CAL Balanced Fund", "CAL Money Market Fund"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d funds, got %d: %v", len(want), len(names), names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("Fund %d: expected %q, got %q", i, n, names[i])
		}
	}
}

func TestListFundsUsesStoredCatalog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	if err := repo.SaveFunds(context.Background(), []string{"Stored Fund A", "Stored Fund B"}); err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}

	mock := testutil.NewMockCALClient().WithDiscovery("Should Not Appear")
	svc := NewCatalogService(repo, mock)

	names, err := svc.ListFunds(context.Background())
	if err != nil {
		t.Fatalf("ListFunds failed: %v", err)
	}

	if len(names) != 2 || names[0] != "Stored Fund A" || names[1] != "Stored Fund B" {
		t.Errorf("Expected the stored catalog untouched, got %v", names)
	}
}

func TestRefreshReplacesStoredCatalog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCatalogRepository(db)
	if err := repo.SaveFunds(context.Background(), []string{"Old Fund"}); err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}

	mock := testutil.NewMockCALClient().WithDiscovery("New Fund A", "New Fund B")
	svc := NewCatalogService(repo, mock)

	names, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(names) != 2 || names[0] != "New Fund A" || names[1] != "New Fund B" {
		t.Errorf("Unexpected refreshed catalog: %v", names)
	}

	stored, err := repo.ListFunds()
	if err != nil {
		t.Fatalf("Failed to read back catalog: %v", err)
	}
	if len(stored) != 2 || stored[0] != "New Fund A" {
		t.Errorf("Expected the stored catalog replaced, got %v", stored)
	}
}

func TestRefreshRejectsEmptyDiscovery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mock := testutil.NewMockCALClient()

	svc := NewCatalogService(repository.NewCatalogRepository(db), mock)

	_, err := svc.Refresh(context.Background())
	if !errors.Is(err, apperrors.ErrCatalogEmpty) {
		t.Fatalf("Expected ErrCatalogEmpty, got %v", err)
	}
}

func TestRefreshPropagatesDiscoveryFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mock := testutil.NewMockCALClient()
	mock.DiscoverErr = errors.New("upstream unavailable")

	svc := NewCatalogService(repository.NewCatalogRepository(db), mock)

	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("Expected discovery failure to propagate")
	}
}
