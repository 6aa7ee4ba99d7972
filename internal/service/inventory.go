package service

import (
	"context"
	"log/slog"

	"github.com/stewardly/ledger-api/internal/domain/model"
	"github.com/stewardly/ledger-api/internal/ports"
)

// DefaultLowStockThreshold is used when a caller does not supply one.
const DefaultLowStockThreshold = 5

// InventoryServiceOptions groups dependencies for InventoryService.
type InventoryServiceOptions struct {
	Repo   ports.InventoryRepository
	Logger *slog.Logger
}

// InventoryService provides business logic for inventory items.
type InventoryService struct {
	repo   ports.InventoryRepository
	logger *slog.Logger
}

// NewInventoryService constructs an InventoryService.
func NewInventoryService(opts InventoryServiceOptions) *InventoryService {
	if opts.Repo == nil {
		panic("service: InventoryService requires a repository")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryService{repo: opts.Repo, logger: logger.With("component", "inventory")}
}

// Create adds a new inventory item.
func (s *InventoryService) Create(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	item, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "inventory item added", "id", item.ID, "name", item.Name)
	return item, nil
}

// GetByID retrieves an item by ID.
func (s *InventoryService) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered page of items.
func (s *InventoryService) List(ctx context.Context, opts model.InventoryListOptions) ([]*model.InventoryItem, error) {
	return s.repo.List(ctx, opts)
}

// Update applies a partial update to an item.
func (s *InventoryService) Update(ctx context.Context, id string, req model.UpdateInventoryItemRequest) (*model.InventoryItem, error) {
	return s.repo.Update(ctx, id, req)
}

// Delete removes an item.
func (s *InventoryService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.InfoContext(ctx, "inventory item deleted", "id", id)
	}
	return ok, nil
}

// LowStock lists items at or below the threshold. A non-positive threshold
// falls back to DefaultLowStockThreshold.
func (s *InventoryService) LowStock(ctx context.Context, threshold int) ([]*model.InventoryItem, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.repo.LowStock(ctx, threshold)
}
