package service

import (
	"context"

	"github.com/stewardly/ledger-api/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// DashboardSummary is the aggregated landing-page payload.
type DashboardSummary struct {
	Totals             *model.TransactionSummary `json:"totals"`
	RecentTransactions []*model.Transaction      `json:"recent_transactions"`
	LowStock           []*model.InventoryItem    `json:"low_stock"`
}

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Transactions *TransactionService
	Inventory    *InventoryService
}

// DashboardService aggregates ledger totals, recent activity, and low-stock
// alerts for the landing page. The three queries run concurrently; any
// failure fails the whole summary.
type DashboardService struct {
	transactions *TransactionService
	inventory    *InventoryService
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	if opts.Transactions == nil {
		panic("service: DashboardService requires a transaction service")
	}
	if opts.Inventory == nil {
		panic("service: DashboardService requires an inventory service")
	}
	return &DashboardService{transactions: opts.Transactions, inventory: opts.Inventory}
}

const recentTransactionCount = 10

// Summary builds the dashboard payload.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	var out DashboardSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.transactions.Summary(gctx)
		if err != nil {
			return err
		}
		out.Totals = totals
		return nil
	})
	g.Go(func() error {
		recent, err := s.transactions.List(gctx, model.TransactionListOptions{Limit: recentTransactionCount})
		if err != nil {
			return err
		}
		out.RecentTransactions = recent
		return nil
	})
	g.Go(func() error {
		low, err := s.inventory.LowStock(gctx, DefaultLowStockThreshold)
		if err != nil {
			return err
		}
		out.LowStock = low
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.RecentTransactions == nil {
		out.RecentTransactions = []*model.Transaction{}
	}
	if out.LowStock == nil {
		out.LowStock = []*model.InventoryItem{}
	}
	return &out, nil
}
