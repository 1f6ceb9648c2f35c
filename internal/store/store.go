package store

import (
	"context"
	"errors"

	"github.com/mfrancani/patrimonio/internal/model"
)

// ErrUnavailable indicates the store could not hand out a transaction at all
// (connection refused, pool exhausted). Callers treat it as transient and
// distinct from errors raised by statements inside a transaction.
var ErrUnavailable = errors.New("store unavailable")

// Store defines the persistence interface for the inventory domain.
// Get* methods return sql.ErrNoRows when the row does not exist.
type Store interface {
	// Enterprises
	CreateEnterprise(ctx context.Context, e *model.Enterprise) error
	GetEnterprise(ctx context.Context, id int64) (*model.Enterprise, error)
	ListEnterprises(ctx context.Context) ([]*model.Enterprise, error)
	UpdateEnterprise(ctx context.Context, e *model.Enterprise) error
	DeleteEnterprise(ctx context.Context, id int64) error

	// Roles and scopes (owned by an enterprise)
	CreateRole(ctx context.Context, r *model.Role) error
	GetRole(ctx context.Context, id int64) (*model.Role, error)
	FindRoleByName(ctx context.Context, enterpriseID int64, name string) (*model.Role, error)
	ListRoles(ctx context.Context, enterpriseID int64) ([]*model.Role, error)
	CreateScope(ctx context.Context, s *model.Scope) error
	GetScope(ctx context.Context, id int64) (*model.Scope, error)
	FindScopeByName(ctx context.Context, enterpriseID int64, name string) (*model.Scope, error)
	ListScopes(ctx context.Context, enterpriseID int64) ([]*model.Scope, error)

	// Users
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserView(ctx context.Context, id int64) (*model.UserView, error)
	ListUsers(ctx context.Context, enterpriseID int64) ([]*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id int64) error

	// Products
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id, enterpriseID int64) (*model.Product, error)
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]*model.Product, int, error) // returns products, total count, error
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id, enterpriseID int64) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
