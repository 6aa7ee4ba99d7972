package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stewardly/ledger-api/internal/data/pgxutil"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// ProfileRepo provides database operations for profiles. It implements
// ports.ProfileStore.
type ProfileRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.ProfileStore = (*ProfileRepo)(nil)

// NewProfileRepo creates a new ProfileRepo with real time provider.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewProfileRepoWithTimeProvider creates a new ProfileRepo with a custom time provider (useful for tests).
func NewProfileRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ProfileRepo {
	return &ProfileRepo{DB: db, timeProvider: tp}
}

const profileColumns = `id, email, first_name, last_name, phone, role, created_at, updated_at`

const (
	profileGetQuery = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = $1`

	profileListByRoleQuery = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE role = $1
		ORDER BY created_at ASC`

	profileListActiveQuery = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE role <> 'pending'
		ORDER BY created_at ASC`
)

// Get retrieves a profile by identity ID. Returns ports.ErrProfileNotFound
// when no profile exists.
func (r *ProfileRepo) Get(ctx context.Context, identityID string) (domainauth.Profile, error) {
	var out domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, profileGetQuery, identityID)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.Profile{}, ports.ErrProfileNotFound
		}
		return domainauth.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return out, nil
}

// Create inserts a new profile.
func (r *ProfileRepo) Create(ctx context.Context, profile domainauth.Profile) (domainauth.Profile, error) {
	if profile.ID == "" {
		return domainauth.Profile{}, errors.New("profile ID is required")
	}
	if !profile.Role.Valid() {
		return domainauth.Profile{}, fmt.Errorf("invalid role %q", profile.Role)
	}

	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.timeProvider.Now().UTC()
	}

	var out domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO profiles (id, email, first_name, last_name, phone, role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+profileColumns,
			profile.ID,
			strings.ToLower(strings.TrimSpace(profile.Email)),
			profile.FirstName,
			profile.LastName,
			profile.Phone,
			profile.Role,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return e
	})
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return out, nil
}

// Merge applies a partial update, leaving unspecified fields untouched so
// concurrent edits to disjoint fields do not clobber each other.
// An empty patch returns the current profile without writing.
func (r *ProfileRepo) Merge(
	ctx context.Context,
	identityID string,
	patch domainauth.ProfilePatch,
) (domainauth.Profile, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, identityID)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domainauth.Profile{}, fmt.Errorf("invalid role %q", *patch.Role)
	}

	setClause, args := buildProfilePatchClause(patch, r.timeProvider.Now().UTC())
	args = append(args, identityID)
	query := "UPDATE profiles SET " + setClause +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + profileColumns

	var out domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Profile])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.Profile{}, ports.ErrProfileNotFound
		}
		return domainauth.Profile{}, fmt.Errorf("merge profile: %w", err)
	}
	return out, nil
}

// buildProfilePatchClause builds the SQL SET clause and args for a partial update.
func buildProfilePatchClause(patch domainauth.ProfilePatch, now time.Time) (string, []any) {
	setParts := make([]string, 0, 5)
	args := make([]any, 0, 5)
	nextIdx := func() int { return len(args) + 1 }

	if patch.FirstName != nil {
		setParts = append(setParts, fmt.Sprintf("first_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*patch.FirstName))
	}
	if patch.LastName != nil {
		setParts = append(setParts, fmt.Sprintf("last_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*patch.LastName))
	}
	if patch.Phone != nil {
		setParts = append(setParts, fmt.Sprintf("phone = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*patch.Phone))
	}
	if patch.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", nextIdx()))
		args = append(args, *patch.Role)
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, now)

	return strings.Join(setParts, ", "), args
}

// Delete removes a profile by identity ID.
func (r *ProfileRepo) Delete(ctx context.Context, identityID string) error {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, identityID)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if rows == 0 {
		return ports.ErrProfileNotFound
	}
	return nil
}

// ListByRole retrieves all profiles holding the given role, oldest first.
func (r *ProfileRepo) ListByRole(ctx context.Context, role domainauth.Role) ([]domainauth.Profile, error) {
	return r.list(ctx, profileListByRoleQuery, role)
}

// ListActive retrieves all profiles whose role is not pending, oldest first.
func (r *ProfileRepo) ListActive(ctx context.Context) ([]domainauth.Profile, error) {
	return r.list(ctx, profileListActiveQuery)
}

func (r *ProfileRepo) list(ctx context.Context, query string, args ...any) ([]domainauth.Profile, error) {
	var out []domainauth.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectRows(rows, pgx.RowToStructByName[domainauth.Profile])
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}
