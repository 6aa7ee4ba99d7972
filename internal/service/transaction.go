package service

import (
	"context"
	"log/slog"

	"github.com/stewardly/ledger-api/internal/domain/model"
	"github.com/stewardly/ledger-api/internal/ports"
)

// TransactionServiceOptions groups dependencies for TransactionService.
type TransactionServiceOptions struct {
	Repo   ports.TransactionRepository
	Logger *slog.Logger
}

// TransactionService provides business logic for ledger transactions.
type TransactionService struct {
	repo   ports.TransactionRepository
	logger *slog.Logger
}

// NewTransactionService constructs a TransactionService.
func NewTransactionService(opts TransactionServiceOptions) *TransactionService {
	if opts.Repo == nil {
		panic("service: TransactionService requires a repository")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{repo: opts.Repo, logger: logger.With("component", "transactions")}
}

// Create records a new transaction.
func (s *TransactionService) Create(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	txn, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "transaction recorded",
		"id", txn.ID, "type", string(txn.Type), "amount_cents", txn.AmountCents)
	return txn, nil
}

// GetByID retrieves a transaction by ID.
func (s *TransactionService) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered page of transactions, newest first.
func (s *TransactionService) List(ctx context.Context, opts model.TransactionListOptions) ([]*model.Transaction, error) {
	return s.repo.List(ctx, opts)
}

// Update applies a partial update to a transaction.
func (s *TransactionService) Update(ctx context.Context, id string, req model.UpdateTransactionRequest) (*model.Transaction, error) {
	return s.repo.Update(ctx, id, req)
}

// Delete removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.InfoContext(ctx, "transaction deleted", "id", id)
	}
	return ok, nil
}

// Summary aggregates ledger totals.
func (s *TransactionService) Summary(ctx context.Context) (*model.TransactionSummary, error) {
	return s.repo.Summary(ctx)
}
