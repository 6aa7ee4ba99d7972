package ports

import (
	"context"

	"github.com/stewardly/ledger-api/internal/domain/model"
)

// TransactionRepository provides persistence for financial transactions.
type TransactionRepository interface {
	Create(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error)
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	List(ctx context.Context, opts model.TransactionListOptions) ([]*model.Transaction, error)
	Update(ctx context.Context, id string, req model.UpdateTransactionRequest) (*model.Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
	Summary(ctx context.Context) (*model.TransactionSummary, error)
}

// InventoryRepository provides persistence for inventory items.
type InventoryRepository interface {
	Create(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error)
	GetByID(ctx context.Context, id string) (*model.InventoryItem, error)
	List(ctx context.Context, opts model.InventoryListOptions) ([]*model.InventoryItem, error)
	Update(ctx context.Context, id string, req model.UpdateInventoryItemRequest) (*model.InventoryItem, error)
	Delete(ctx context.Context, id string) (bool, error)
	LowStock(ctx context.Context, threshold int) ([]*model.InventoryItem, error)
}
