package primary

import "context"

// CatalogService defines the primary port for catalog values.
type CatalogService interface {
	// ListEntries lists catalog entries, active only unless requested.
	ListEntries(ctx context.Context, filters CatalogFilters) ([]*CatalogEntry, error)

	// CreateEntry adds a value to a catalog.
	CreateEntry(ctx context.Context, req CreateCatalogEntryRequest) (*CatalogEntry, error)

	// DeactivateEntry hides a value from new selections.
	DeactivateEntry(ctx context.Context, entryID string) error

	// ActivateEntry makes a value selectable again.
	ActivateEntry(ctx context.Context, entryID string) error
}

// CreateCatalogEntryRequest contains parameters for creating a catalog entry.
type CreateCatalogEntryRequest struct {
	Type        string
	Value       string
	Description string
}

// CatalogFilters contains filter options for listing catalog entries.
type CatalogFilters struct {
	Type            string
	IncludeInactive bool
}

// CatalogEntry is a catalog value.
type CatalogEntry struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Value        string `json:"value"`
	Description  string `json:"description,omitempty"`
	IsActive     bool   `json:"is_active"`
	DisplayOrder int    `json:"display_order"`
}
