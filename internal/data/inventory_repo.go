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

// InventoryRepo provides database operations for inventory items.
// It implements ports.InventoryRepository.
type InventoryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.InventoryRepository = (*InventoryRepo)(nil)

// NewInventoryRepo creates a new InventoryRepo with real time provider.
func NewInventoryRepo(db *sql.DB) *InventoryRepo {
	return &InventoryRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewInventoryRepoWithTimeProvider creates a new InventoryRepo with a custom time provider (useful for tests).
func NewInventoryRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *InventoryRepo {
	return &InventoryRepo{DB: db, timeProvider: tp}
}

const inventoryColumns = `id, name, category, quantity, unit, location, notes, created_at, updated_at`

// Create validates and inserts a new inventory item.
func (r *InventoryRepo) Create(ctx context.Context, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.InventoryItem
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO inventory_items (id, name, category, quantity, unit, location, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+inventoryColumns,
			uuid.NewString(),
			strings.TrimSpace(req.Name),
			req.Category,
			req.Quantity,
			req.Unit,
			req.Location,
			req.Notes,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.InventoryItem])
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("create inventory item: %w", err)
	}
	return &out, nil
}

// GetByID retrieves an item. Returns ErrInventoryItemNotFound when missing.
func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	var out model.InventoryItem
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.InventoryItem])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInventoryItemNotFound
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return &out, nil
}

// List retrieves items alphabetically, honoring the filters and paging in opts.
func (r *InventoryRepo) List(ctx context.Context, opts model.InventoryListOptions) ([]*model.InventoryItem, error) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)
	nextIdx := func() int { return len(args) + 1 }

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", nextIdx()))
		args = append(args, "%"+escapeLike(strings.TrimSpace(*opts.Q))+"%")
	}
	if opts.Category != nil {
		conds = append(conds, fmt.Sprintf("category = $%d", nextIdx()))
		args = append(args, *opts.Category)
	}
	if opts.Location != nil {
		conds = append(conds, fmt.Sprintf("location = $%d", nextIdx()))
		args = append(args, *opts.Location)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items` + where +
		` ORDER BY name ASC` +
		` LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, clampLimit(opts.Limit), max(opts.Offset, 0))

	return r.listQuery(ctx, query, args...)
}

// Update applies a partial update. Nil fields in req are left untouched.
func (r *InventoryRepo) Update(ctx context.Context, id string, req model.UpdateInventoryItemRequest) (*model.InventoryItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 7)
	args := make([]any, 0, 7)
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", nextIdx()))
		args = append(args, *req.Category)
	}
	if req.Quantity != nil {
		setParts = append(setParts, fmt.Sprintf("quantity = $%d", nextIdx()))
		args = append(args, *req.Quantity)
	}
	if req.Unit != nil {
		setParts = append(setParts, fmt.Sprintf("unit = $%d", nextIdx()))
		args = append(args, *req.Unit)
	}
	if req.Location != nil {
		setParts = append(setParts, fmt.Sprintf("location = $%d", nextIdx()))
		args = append(args, *req.Location)
	}
	if req.Notes != nil {
		setParts = append(setParts, fmt.Sprintf("notes = $%d", nextIdx()))
		args = append(args, *req.Notes)
	}
	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())
	args = append(args, id)

	query := "UPDATE inventory_items SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + inventoryColumns

	var out model.InventoryItem
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.InventoryItem])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInventoryItemNotFound
		}
		return nil, fmt.Errorf("update inventory item: %w", err)
	}
	return &out, nil
}

// Delete removes an item. Returns false when no row matched.
func (r *InventoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete inventory item: %w", err)
	}
	return rows > 0, nil
}

// LowStock retrieves items whose quantity is at or below the threshold,
// lowest quantity first.
func (r *InventoryRepo) LowStock(ctx context.Context, threshold int) ([]*model.InventoryItem, error) {
	return r.listQuery(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE quantity <= $1 ORDER BY quantity ASC, name ASC`,
		threshold)
}

func (r *InventoryRepo) listQuery(ctx context.Context, query string, args ...any) ([]*model.InventoryItem, error) {
	var out []*model.InventoryItem
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.InventoryItem])
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	return out, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
