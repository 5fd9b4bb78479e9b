package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/storage"
	"github.com/mcoot/schoolgate/internal/storage/postgres/migrations"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

// DBTX is the subset of *sql.DB and *sql.Tx the store needs
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Storage is a Postgres-backed implementation of the credential store
type Storage struct {
	db   DBTX
	conn *sql.DB
}

// New opens a connection pool for dsn, verifies it and applies migrations
func New(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection pool (for testing)
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db, conn: db}
}

// RunMigrations applies the embedded schema migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.conn.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Ensure Storage implements the interfaces
var (
	_ storage.CredentialStore = (*Storage)(nil)
	_ storage.Pinger          = (*Storage)(nil)
)

const accountColumns = `id, username, password, full_name, phone, email, role, failed_attempts, is_blocked, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*model.Account, error) {
	a := &model.Account{}
	err := row.Scan(&a.ID, &a.Username, &a.Credential, &a.FullName, &a.Phone, &a.Email,
		&a.Role, &a.FailedAttempts, &a.Blocked, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Lookup operations

func (s *Storage) LookupByUsername(ctx context.Context, username string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users
		 WHERE username = $1`

	return s.queryAccount(ctx, query, username)
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users
		 WHERE id = $1`

	return s.queryAccount(ctx, query, string(id))
}

func (s *Storage) queryAccount(ctx context.Context, query string, arg any) (*model.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users
		 ORDER BY username`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return accounts, nil
}

// Lockout counter operations

func (s *Storage) UpdateFailedAttempts(ctx context.Context, id model.AccountID, count int, blocked bool) error {
	query :=
		`UPDATE users SET failed_attempts = $2, is_blocked = $3, updated_at = now()
		 WHERE id = $1`

	return s.execOne(ctx, query, string(id), count, blocked)
}

func (s *Storage) ResetAttempts(ctx context.Context, id model.AccountID) error {
	query :=
		`UPDATE users SET failed_attempts = 0, updated_at = now()
		 WHERE id = $1`

	return s.execOne(ctx, query, string(id))
}

// execOne runs a statement that must touch exactly one account row
func (s *Storage) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Account lifecycle

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	query :=
		`INSERT INTO users (id, username, password, full_name, phone, email, role, failed_attempts, is_blocked, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		string(account.ID), account.Username, account.Credential, account.FullName,
		account.Phone, account.Email, string(account.Role),
		account.FailedAttempts, account.Blocked, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateUsername
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Storage) UpdateAccount(ctx context.Context, account *model.Account) error {
	query :=
		`UPDATE users SET username = $2, password = $3, full_name = $4, phone = $5, email = $6, role = $7, updated_at = $8
		 WHERE id = $1`

	err := s.execOne(ctx, query,
		string(account.ID), account.Username, account.Credential, account.FullName,
		account.Phone, account.Email, string(account.Role), account.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateUsername
	}
	return err
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	query := `DELETE FROM users WHERE id = $1`

	return s.execOne(ctx, query, string(id))
}
