// Package mocks provides mock implementations for testing the ledger service.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces. Hand-written doubles for the auth ports live in
// the nested auth package.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	repo := mocks.NewMockTransactionRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), "id").Return(txn, nil)
package mocks

// Generate mock for TransactionRepository:
// Create, GetByID, List, Update, Delete, Summary
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=transaction_repository_mock.go github.com/stewardly/ledger-api/internal/ports TransactionRepository

// Generate mock for InventoryRepository:
// Create, GetByID, List, Update, Delete, LowStock
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=inventory_repository_mock.go github.com/stewardly/ledger-api/internal/ports InventoryRepository
