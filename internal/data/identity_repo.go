package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stewardly/ledger-api/internal/data/pgxutil"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// IdentityRepo provides database operations for local login credentials.
// It implements ports.CredentialStore.
type IdentityRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.CredentialStore = (*IdentityRepo)(nil)

// NewIdentityRepo creates a new IdentityRepo with real time provider.
func NewIdentityRepo(db *sql.DB) *IdentityRepo {
	return &IdentityRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewIdentityRepoWithTimeProvider creates a new IdentityRepo with a custom time provider (useful for tests).
func NewIdentityRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *IdentityRepo {
	return &IdentityRepo{DB: db, timeProvider: tp}
}

const identityColumns = `id, email, password_hash, email_verified, created_at, updated_at`

// Create inserts a new credential record. The email is stored lowercased;
// a duplicate email maps to ports.ErrEmailInUse.
func (r *IdentityRepo) Create(ctx context.Context, cred domainauth.Credential) (domainauth.Credential, error) {
	if cred.ID == "" {
		return domainauth.Credential{}, errors.New("identity ID is required")
	}
	if len(cred.PasswordHash) == 0 {
		return domainauth.Credential{}, errors.New("password hash is required")
	}

	createdAt := cred.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.timeProvider.Now().UTC()
	}

	var out domainauth.Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO identities (id, email, password_hash, email_verified, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+identityColumns,
			cred.ID,
			normalizeEmail(cred.Email),
			cred.PasswordHash,
			cred.EmailVerified,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Credential])
		return e
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainauth.Credential{}, ports.ErrEmailInUse
		}
		return domainauth.Credential{}, fmt.Errorf("create identity: %w", err)
	}
	return out, nil
}

// GetByEmail retrieves a credential record by email, case-insensitively.
func (r *IdentityRepo) GetByEmail(ctx context.Context, email string) (domainauth.Credential, error) {
	return r.get(ctx, `SELECT `+identityColumns+` FROM identities WHERE email = $1`, normalizeEmail(email))
}

// GetByID retrieves a credential record by identity ID.
func (r *IdentityRepo) GetByID(ctx context.Context, identityID string) (domainauth.Credential, error) {
	return r.get(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, identityID)
}

func (r *IdentityRepo) get(ctx context.Context, query string, arg any) (domainauth.Credential, error) {
	var out domainauth.Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.Credential])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.Credential{}, ports.ErrIdentityNotFound
		}
		return domainauth.Credential{}, fmt.Errorf("get identity: %w", err)
	}
	return out, nil
}

// UpdatePassword replaces the stored password hash.
func (r *IdentityRepo) UpdatePassword(ctx context.Context, identityID string, passwordHash []byte) error {
	if len(passwordHash) == 0 {
		return errors.New("password hash is required")
	}
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx,
			`UPDATE identities SET password_hash = $1, updated_at = $2 WHERE id = $3`,
			passwordHash, r.timeProvider.Now().UTC(), identityID)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if rows == 0 {
		return ports.ErrIdentityNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
