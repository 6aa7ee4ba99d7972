package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stewardly/ledger-api/internal/data/pgxutil"
	"github.com/stewardly/ledger-api/internal/domain/model"
	"github.com/stewardly/ledger-api/internal/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// TransactionRepo provides database operations for ledger transactions.
// It implements ports.TransactionRepository.
type TransactionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.TransactionRepository = (*TransactionRepo)(nil)

// NewTransactionRepo creates a new TransactionRepo with real time provider.
func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewTransactionRepoWithTimeProvider creates a new TransactionRepo with a custom time provider (useful for tests).
func NewTransactionRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *TransactionRepo {
	return &TransactionRepo{DB: db, timeProvider: tp}
}

const transactionColumns = `id, type, amount_cents, category, description, occurred_on, recorded_by, created_at, updated_at`

// Create validates and inserts a new transaction.
func (r *TransactionRepo) Create(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Transaction
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO transactions (id, type, amount_cents, category, description, occurred_on, recorded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+transactionColumns,
			uuid.NewString(),
			req.Type,
			req.AmountCents,
			strings.TrimSpace(req.Category),
			req.Description,
			req.OccurredOn,
			req.RecordedBy,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Transaction])
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a transaction. Returns ErrTransactionNotFound when missing.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	var out model.Transaction
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Transaction])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &out, nil
}

// List retrieves transactions newest-occurrence first, honoring the filters
// and paging in opts.
func (r *TransactionRepo) List(ctx context.Context, opts model.TransactionListOptions) ([]*model.Transaction, error) {
	where, args := buildTransactionFilter(opts)
	limit := clampLimit(opts.Limit)

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY occurred_on DESC, created_at DESC` +
		` LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, max(opts.Offset, 0))

	var out []*model.Transaction
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Transaction])
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// buildTransactionFilter builds the WHERE clause and args for List.
func buildTransactionFilter(opts model.TransactionListOptions) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)
	nextIdx := func() int { return len(args) + 1 }

	if opts.Type != nil {
		conds = append(conds, fmt.Sprintf("type = $%d", nextIdx()))
		args = append(args, *opts.Type)
	}
	if opts.Category != nil {
		conds = append(conds, fmt.Sprintf("category = $%d", nextIdx()))
		args = append(args, *opts.Category)
	}
	if opts.From != nil {
		conds = append(conds, fmt.Sprintf("occurred_on >= $%d", nextIdx()))
		args = append(args, *opts.From)
	}
	if opts.To != nil {
		conds = append(conds, fmt.Sprintf("occurred_on <= $%d", nextIdx()))
		args = append(args, *opts.To)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update applies a partial update. Nil fields in req are left untouched.
func (r *TransactionRepo) Update(ctx context.Context, id string, req model.UpdateTransactionRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 6)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.Type != nil {
		setParts = append(setParts, fmt.Sprintf("type = $%d", nextIdx()))
		args = append(args, *req.Type)
	}
	if req.AmountCents != nil {
		setParts = append(setParts, fmt.Sprintf("amount_cents = $%d", nextIdx()))
		args = append(args, *req.AmountCents)
	}
	if req.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Category))
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, *req.Description)
	}
	if req.OccurredOn != nil {
		setParts = append(setParts, fmt.Sprintf("occurred_on = $%d", nextIdx()))
		args = append(args, *req.OccurredOn)
	}
	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())
	args = append(args, id)

	query := "UPDATE transactions SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + transactionColumns

	var out model.Transaction
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Transaction])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return &out, nil
}

// Delete removes a transaction. Returns false when no row matched.
func (r *TransactionRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return rows > 0, nil
}

// Summary aggregates income, expense, and balance totals across the ledger.
func (r *TransactionRepo) Summary(ctx context.Context) (*model.TransactionSummary, error) {
	var out model.TransactionSummary
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT
				COALESCE(SUM(amount_cents) FILTER (WHERE type = 'income'), 0)  AS income_cents,
				COALESCE(SUM(amount_cents) FILTER (WHERE type = 'expense'), 0) AS expense_cents,
				COALESCE(SUM(amount_cents) FILTER (WHERE type = 'income'), 0)
					- COALESCE(SUM(amount_cents) FILTER (WHERE type = 'expense'), 0) AS balance_cents,
				COUNT(*) AS count
			FROM transactions`)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.TransactionSummary])
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("summarize transactions: %w", err)
	}
	return &out, nil
}

// clampLimit normalizes paging limits into [1, maxListLimit].
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
