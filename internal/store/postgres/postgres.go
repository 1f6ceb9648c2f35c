// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/mfrancani/patrimonio/internal/model"
	"github.com/mfrancani/patrimonio/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateEnterprise(ctx context.Context, e *model.Enterprise) error {
	return queryCreateEnterprise(ctx, s.db, e)
}

func (s *PostgresStore) GetEnterprise(ctx context.Context, id int64) (*model.Enterprise, error) {
	return queryGetEnterprise(ctx, s.db, id)
}

func (s *PostgresStore) ListEnterprises(ctx context.Context) ([]*model.Enterprise, error) {
	return queryListEnterprises(ctx, s.db)
}

func (s *PostgresStore) UpdateEnterprise(ctx context.Context, e *model.Enterprise) error {
	return queryUpdateEnterprise(ctx, s.db, e)
}

func (s *PostgresStore) DeleteEnterprise(ctx context.Context, id int64) error {
	return queryDeleteEnterprise(ctx, s.db, id)
}

func (s *PostgresStore) CreateRole(ctx context.Context, r *model.Role) error {
	return queryCreateRole(ctx, s.db, r)
}

func (s *PostgresStore) GetRole(ctx context.Context, id int64) (*model.Role, error) {
	return queryGetRole(ctx, s.db, id)
}

func (s *PostgresStore) FindRoleByName(ctx context.Context, enterpriseID int64, name string) (*model.Role, error) {
	return queryFindRoleByName(ctx, s.db, enterpriseID, name)
}

func (s *PostgresStore) ListRoles(ctx context.Context, enterpriseID int64) ([]*model.Role, error) {
	return queryListRoles(ctx, s.db, enterpriseID)
}

func (s *PostgresStore) CreateScope(ctx context.Context, sc *model.Scope) error {
	return queryCreateScope(ctx, s.db, sc)
}

func (s *PostgresStore) GetScope(ctx context.Context, id int64) (*model.Scope, error) {
	return queryGetScope(ctx, s.db, id)
}

func (s *PostgresStore) FindScopeByName(ctx context.Context, enterpriseID int64, name string) (*model.Scope, error) {
	return queryFindScopeByName(ctx, s.db, enterpriseID, name)
}

func (s *PostgresStore) ListScopes(ctx context.Context, enterpriseID int64) ([]*model.Scope, error) {
	return queryListScopes(ctx, s.db, enterpriseID)
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) error {
	return queryCreateUser(ctx, s.db, u)
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return queryGetUser(ctx, s.db, id)
}

func (s *PostgresStore) GetUserView(ctx context.Context, id int64) (*model.UserView, error) {
	return queryGetUserView(ctx, s.db, id)
}

func (s *PostgresStore) ListUsers(ctx context.Context, enterpriseID int64) ([]*model.User, error) {
	return queryListUsers(ctx, s.db, enterpriseID)
}

func (s *PostgresStore) UpdateUser(ctx context.Context, u *model.User) error {
	return queryUpdateUser(ctx, s.db, u)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	return queryDeleteUser(ctx, s.db, id)
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *model.Product) error {
	return queryCreateProduct(ctx, s.db, p)
}

func (s *PostgresStore) GetProduct(ctx context.Context, id, enterpriseID int64) (*model.Product, error) {
	return queryGetProduct(ctx, s.db, id, enterpriseID)
}

func (s *PostgresStore) ListProducts(ctx context.Context, filter model.ProductFilter) ([]*model.Product, int, error) {
	return queryListProducts(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *model.Product) error {
	return queryUpdateProduct(ctx, s.db, p)
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id, enterpriseID int64) error {
	return queryDeleteProduct(ctx, s.db, id, enterpriseID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
// A begin failure is reported as store.ErrUnavailable so that callers can
// distinguish "no session" from errors raised inside the transaction.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w: %v", store.ErrUnavailable, err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateEnterprise(ctx context.Context, e *model.Enterprise) error {
	return queryCreateEnterprise(ctx, s.tx, e)
}

func (s *txStore) GetEnterprise(ctx context.Context, id int64) (*model.Enterprise, error) {
	return queryGetEnterprise(ctx, s.tx, id)
}

func (s *txStore) ListEnterprises(ctx context.Context) ([]*model.Enterprise, error) {
	return queryListEnterprises(ctx, s.tx)
}

func (s *txStore) UpdateEnterprise(ctx context.Context, e *model.Enterprise) error {
	return queryUpdateEnterprise(ctx, s.tx, e)
}

func (s *txStore) DeleteEnterprise(ctx context.Context, id int64) error {
	return queryDeleteEnterprise(ctx, s.tx, id)
}

func (s *txStore) CreateRole(ctx context.Context, r *model.Role) error {
	return queryCreateRole(ctx, s.tx, r)
}

func (s *txStore) GetRole(ctx context.Context, id int64) (*model.Role, error) {
	return queryGetRole(ctx, s.tx, id)
}

func (s *txStore) FindRoleByName(ctx context.Context, enterpriseID int64, name string) (*model.Role, error) {
	return queryFindRoleByName(ctx, s.tx, enterpriseID, name)
}

func (s *txStore) ListRoles(ctx context.Context, enterpriseID int64) ([]*model.Role, error) {
	return queryListRoles(ctx, s.tx, enterpriseID)
}

func (s *txStore) CreateScope(ctx context.Context, sc *model.Scope) error {
	return queryCreateScope(ctx, s.tx, sc)
}

func (s *txStore) GetScope(ctx context.Context, id int64) (*model.Scope, error) {
	return queryGetScope(ctx, s.tx, id)
}

func (s *txStore) FindScopeByName(ctx context.Context, enterpriseID int64, name string) (*model.Scope, error) {
	return queryFindScopeByName(ctx, s.tx, enterpriseID, name)
}

func (s *txStore) ListScopes(ctx context.Context, enterpriseID int64) ([]*model.Scope, error) {
	return queryListScopes(ctx, s.tx, enterpriseID)
}

func (s *txStore) CreateUser(ctx context.Context, u *model.User) error {
	return queryCreateUser(ctx, s.tx, u)
}

func (s *txStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return queryGetUser(ctx, s.tx, id)
}

func (s *txStore) GetUserView(ctx context.Context, id int64) (*model.UserView, error) {
	return queryGetUserView(ctx, s.tx, id)
}

func (s *txStore) ListUsers(ctx context.Context, enterpriseID int64) ([]*model.User, error) {
	return queryListUsers(ctx, s.tx, enterpriseID)
}

func (s *txStore) UpdateUser(ctx context.Context, u *model.User) error {
	return queryUpdateUser(ctx, s.tx, u)
}

func (s *txStore) DeleteUser(ctx context.Context, id int64) error {
	return queryDeleteUser(ctx, s.tx, id)
}

func (s *txStore) CreateProduct(ctx context.Context, p *model.Product) error {
	return queryCreateProduct(ctx, s.tx, p)
}

func (s *txStore) GetProduct(ctx context.Context, id, enterpriseID int64) (*model.Product, error) {
	return queryGetProduct(ctx, s.tx, id, enterpriseID)
}

func (s *txStore) ListProducts(ctx context.Context, filter model.ProductFilter) ([]*model.Product, int, error) {
	return queryListProducts(ctx, s.tx, filter)
}

func (s *txStore) UpdateProduct(ctx context.Context, p *model.Product) error {
	return queryUpdateProduct(ctx, s.tx, p)
}

func (s *txStore) DeleteProduct(ctx context.Context, id, enterpriseID int64) error {
	return queryDeleteProduct(ctx, s.tx, id, enterpriseID)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
