package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/DilshanPGN/cal-fund-analyzer/internal/apperrors"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/cal"
	"github.com/DilshanPGN/cal-fund-analyzer/internal/repository"
)

// CatalogService maintains the discovered list of known funds. The catalog
// is read-mostly: it is discovered once via a probe fetch and refreshed only
// when empty or explicitly asked to.
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	calClient   cal.Client

	// Concurrent discovery requests collapse into a single probe fetch so
	// the upstream never sees more than one outstanding discovery call.
	group singleflight.Group
}

// NewCatalogService creates a new CatalogService with the provided dependencies.
func NewCatalogService(catalogRepo *repository.CatalogRepository, calClient cal.Client) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		calClient:   calClient,
	}
}

// ListFunds returns the cached catalog, discovering and persisting it first
// when empty.
func (s *CatalogService) ListFunds(ctx context.Context) ([]string, error) {
	names, err := s.catalogRepo.ListFunds()
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return names, nil
	}
	return s.Refresh(ctx)
}

// Refresh forces a fresh discovery probe and replaces the stored catalog.
func (s *CatalogService) Refresh(ctx context.Context) ([]string, error) {
	result, err, _ := s.group.Do("discover", func() (any, error) {
		names, err := s.calClient.DiscoverFunds(ctx)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, apperrors.ErrCatalogEmpty
		}
		if err := s.catalogRepo.SaveFunds(ctx, names); err != nil {
			return nil, fmt.Errorf("failed to persist fund catalog: %w", err)
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}
