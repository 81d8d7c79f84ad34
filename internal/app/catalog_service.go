package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/catalog"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// CatalogServiceImpl implements the CatalogService interface.
type CatalogServiceImpl struct {
	catalogRepo secondary.CatalogRepository
	activity    *Activity
}

// NewCatalogService creates a new CatalogService with injected dependencies.
func NewCatalogService(catalogRepo secondary.CatalogRepository, activity *Activity) *CatalogServiceImpl {
	return &CatalogServiceImpl{catalogRepo: catalogRepo, activity: activity}
}

// ListEntries lists catalog values.
func (s *CatalogServiceImpl) ListEntries(ctx context.Context, filters primary.CatalogFilters) ([]*primary.CatalogEntry, error) {
	if filters.Type != "" && !catalog.IsValidType(filters.Type) {
		return nil, invalid(fmt.Sprintf("unknown catalog type %q", filters.Type))
	}

	records, err := s.catalogRepo.List(ctx, secondary.CatalogFilters{
		Type:            filters.Type,
		IncludeInactive: filters.IncludeInactive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}

	entries := make([]*primary.CatalogEntry, len(records))
	for i, r := range records {
		entries[i] = recordToCatalogEntry(r)
	}
	return entries, nil
}

// CreateEntry adds a value at the end of its catalog.
func (s *CatalogServiceImpl) CreateEntry(ctx context.Context, req primary.CreateCatalogEntryRequest) (*primary.CatalogEntry, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return nil, err
	}

	value := strings.TrimSpace(req.Value)
	exists := false
	if catalog.IsValidType(req.Type) && value != "" {
		var err error
		exists, err = s.catalogRepo.ValueExists(ctx, req.Type, value)
		if err != nil {
			return nil, fmt.Errorf("failed to check catalog value: %w", err)
		}
	}

	guardCtx := catalog.CreateEntryContext{
		ActorRole:   ctxutil.ActorRole(ctx),
		Type:        req.Type,
		Value:       value,
		ValueExists: exists,
	}
	if result := catalog.CanCreateEntry(guardCtx); !result.Allowed {
		return nil, invalid(result.Reason)
	}

	order, err := s.catalogRepo.NextDisplayOrder(ctx, req.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to compute display order: %w", err)
	}
	id, err := s.catalogRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate catalog ID: %w", err)
	}

	record := &secondary.CatalogRecord{
		ID:           id,
		Type:         req.Type,
		Value:        value,
		Description:  strings.TrimSpace(req.Description),
		IsActive:     true,
		DisplayOrder: order,
	}
	if err := s.catalogRepo.Create(ctx, record); err != nil {
		return nil, duplicateOr(err, fmt.Sprintf("%s %q already exists", req.Type, value), "create catalog entry")
	}

	s.activity.Record(ctx, actionCreate, moduleCatalogs, "%s: %s", req.Type, value)
	return recordToCatalogEntry(record), nil
}

// DeactivateEntry hides a value from new selections. Stored references keep their text.
func (s *CatalogServiceImpl) DeactivateEntry(ctx context.Context, entryID string) error {
	return s.toggle(ctx, entryID, false)
}

// ActivateEntry makes a value selectable again.
func (s *CatalogServiceImpl) ActivateEntry(ctx context.Context, entryID string) error {
	return s.toggle(ctx, entryID, true)
}

func (s *CatalogServiceImpl) toggle(ctx context.Context, entryID string, active bool) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}

	entry, err := s.catalogRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}

	guardCtx := catalog.ToggleContext{ActorRole: ctxutil.ActorRole(ctx), EntryID: entryID, IsActive: entry.IsActive}
	result := catalog.CanDeactivate(guardCtx)
	action := actionDeactivate
	if active {
		result = catalog.CanActivate(guardCtx)
		action = actionActivate
	}
	if !result.Allowed {
		return invalid(result.Reason)
	}

	if err := s.catalogRepo.SetActive(ctx, entryID, active); err != nil {
		return err
	}
	s.activity.Record(ctx, action, moduleCatalogs, "%s: %s", entry.Type, entry.Value)
	return nil
}

func recordToCatalogEntry(r *secondary.CatalogRecord) *primary.CatalogEntry {
	return &primary.CatalogEntry{
		ID:           r.ID,
		Type:         r.Type,
		Value:        r.Value,
		Description:  r.Description,
		IsActive:     r.IsActive,
		DisplayOrder: r.DisplayOrder,
	}
}

// Ensure CatalogServiceImpl implements the interface
var _ primary.CatalogService = (*CatalogServiceImpl)(nil)
