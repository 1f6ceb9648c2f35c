package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mfrancani/patrimonio/internal/model"
)

// Column lists used for SELECT statements.
const (
	enterpriseColumns = `id, name, accountable_email, activity_type`
	roleColumns       = `id, enterprise_id, name, description, hierarchy`
	scopeColumns      = `id, enterprise_id, name, description`
	userColumns       = `id, username, email, full_name, role_id, scope_id, enterprise_id, created_at`
	productColumns    = `id, enterprise_id, name, cost, price, stock, description,
	created_at, updated_at, deleted_at, created_by, last_updated_by`
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateEnterprise(ctx context.Context, db executor, e *model.Enterprise) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO enterprises (id, name, accountable_email, activity_type)
		VALUES ($1, $2, $3, $4)`,
		e.ID,
		e.Name,
		e.AccountableEmail,
		nullString(e.ActivityType),
	)
	return err
}

func queryGetEnterprise(ctx context.Context, db executor, id int64) (*model.Enterprise, error) {
	row := db.QueryRowContext(ctx, `SELECT `+enterpriseColumns+` FROM enterprises WHERE id = $1`, id)
	return scanEnterprise(row)
}

func queryListEnterprises(ctx context.Context, db executor) ([]*model.Enterprise, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+enterpriseColumns+` FROM enterprises ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list enterprises: %w", err)
	}
	defer rows.Close()

	var enterprises []*model.Enterprise
	for rows.Next() {
		e, err := scanEnterprise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enterprises: %w", err)
		}
		enterprises = append(enterprises, e)
	}
	return enterprises, rows.Err()
}

func queryUpdateEnterprise(ctx context.Context, db executor, e *model.Enterprise) error {
	_, err := db.ExecContext(ctx, `
		UPDATE enterprises
		SET name = $2, accountable_email = $3, activity_type = $4
		WHERE id = $1`,
		e.ID,
		e.Name,
		e.AccountableEmail,
		nullString(e.ActivityType),
	)
	return err
}

func queryDeleteEnterprise(ctx context.Context, db executor, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM enterprises WHERE id = $1`, id)
	return err
}

func queryCreateRole(ctx context.Context, db executor, r *model.Role) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO roles (id, enterprise_id, name, description, hierarchy)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID,
		r.EnterpriseID,
		r.Name,
		nullString(r.Description),
		r.Hierarchy,
	)
	return err
}

func queryGetRole(ctx context.Context, db executor, id int64) (*model.Role, error) {
	row := db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

func queryFindRoleByName(ctx context.Context, db executor, enterpriseID int64, name string) (*model.Role, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE enterprise_id = $1 AND name = $2`,
		enterpriseID, name)
	return scanRole(row)
}

func queryListRoles(ctx context.Context, db executor, enterpriseID int64) ([]*model.Role, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE enterprise_id = $1 ORDER BY hierarchy, id`,
		enterpriseID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []*model.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan roles: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func queryCreateScope(ctx context.Context, db executor, sc *model.Scope) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO scopes (id, enterprise_id, name, description)
		VALUES ($1, $2, $3, $4)`,
		sc.ID,
		sc.EnterpriseID,
		sc.Name,
		nullString(sc.Description),
	)
	return err
}

func queryGetScope(ctx context.Context, db executor, id int64) (*model.Scope, error) {
	row := db.QueryRowContext(ctx, `SELECT `+scopeColumns+` FROM scopes WHERE id = $1`, id)
	return scanScope(row)
}

func queryFindScopeByName(ctx context.Context, db executor, enterpriseID int64, name string) (*model.Scope, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+scopeColumns+` FROM scopes WHERE enterprise_id = $1 AND name = $2`,
		enterpriseID, name)
	return scanScope(row)
}

func queryListScopes(ctx context.Context, db executor, enterpriseID int64) ([]*model.Scope, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+scopeColumns+` FROM scopes WHERE enterprise_id = $1 ORDER BY id`,
		enterpriseID)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	defer rows.Close()

	var scopes []*model.Scope
	for rows.Next() {
		sc, err := scanScope(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scopes: %w", err)
		}
		scopes = append(scopes, sc)
	}
	return scopes, rows.Err()
}

func queryCreateUser(ctx context.Context, db executor, u *model.User) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, full_name, role_id, scope_id, enterprise_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID,
		u.Username,
		u.Email,
		nullString(u.FullName),
		u.RoleID,
		u.ScopeID,
		u.EnterpriseID,
		u.CreatedAt,
	)
	return err
}

func queryGetUser(ctx context.Context, db executor, id int64) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func queryGetUserView(ctx context.Context, db executor, id int64) (*model.UserView, error) {
	row := db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.full_name, u.role_id, u.scope_id, u.enterprise_id, u.created_at,
			r.name AS role_name, r.hierarchy, s.name AS scope_name
		FROM users u
		JOIN roles r ON r.id = u.role_id
		JOIN scopes s ON s.id = u.scope_id
		WHERE u.id = $1`, id)
	return scanUserView(row)
}

func queryListUsers(ctx context.Context, db executor, enterpriseID int64) ([]*model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE enterprise_id = $1 ORDER BY id`,
		enterpriseID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan users: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func queryUpdateUser(ctx context.Context, db executor, u *model.User) error {
	_, err := db.ExecContext(ctx, `
		UPDATE users
		SET username = $2, email = $3, full_name = $4, role_id = $5, scope_id = $6, enterprise_id = $7
		WHERE id = $1`,
		u.ID,
		u.Username,
		u.Email,
		nullString(u.FullName),
		u.RoleID,
		u.ScopeID,
		u.EnterpriseID,
	)
	return err
}

func queryDeleteUser(ctx context.Context, db executor, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func queryCreateProduct(ctx context.Context, db executor, p *model.Product) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO products (enterprise_id, name, cost, price, stock, description, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.EnterpriseID,
		p.Name,
		p.Cost,
		nullFloatPtr(p.Price),
		p.Stock,
		nullString(p.Description),
		p.CreatedAt,
		nullInt64(p.CreatedBy),
	).Scan(&p.ID)
}

func queryGetProduct(ctx context.Context, db executor, id, enterpriseID int64) (*model.Product, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE id = $1 AND enterprise_id = $2 AND deleted_at IS NULL`,
		id, enterpriseID)
	return scanProduct(row)
}

func queryListProducts(ctx context.Context, db executor, filter model.ProductFilter) ([]*model.Product, int, error) {
	whereClauses := []string{"enterprise_id = $1", "deleted_at IS NULL"}
	args := []any{filter.EnterpriseID}
	argIdx := 1

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("(name ILIKE '%%' || %s || '%%' OR description ILIKE '%%' || %s || '%%')", p, p))
		args = append(args, filter.Search)
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + productColumns +
		" FROM products WHERE " + strings.Join(whereClauses, " AND ") + " ORDER BY id"

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	var total int
	for rows.Next() {
		p, t, err := scanProductWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan products: %w", err)
		}
		total = t
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func queryUpdateProduct(ctx context.Context, db executor, p *model.Product) error {
	_, err := db.ExecContext(ctx, `
		UPDATE products
		SET name = $3, cost = $4, price = $5, stock = $6, description = $7,
			updated_at = $8, last_updated_by = $9
		WHERE id = $1 AND enterprise_id = $2 AND deleted_at IS NULL`,
		p.ID,
		p.EnterpriseID,
		p.Name,
		p.Cost,
		nullFloatPtr(p.Price),
		p.Stock,
		nullString(p.Description),
		nullTimePtr(p.UpdatedAt),
		nullInt64(p.LastUpdatedBy),
	)
	return err
}

func queryDeleteProduct(ctx context.Context, db executor, id, enterpriseID int64) error {
	_, err := db.ExecContext(ctx, `
		UPDATE products SET deleted_at = now()
		WHERE id = $1 AND enterprise_id = $2 AND deleted_at IS NULL`,
		id, enterpriseID)
	return err
}
