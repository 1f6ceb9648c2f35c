package postgres

import (
	"database/sql"
	"time"

	"github.com/mfrancani/patrimonio/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanEnterprise(row scannable) (*model.Enterprise, error) {
	var e model.Enterprise
	var activityType sql.NullString

	if err := row.Scan(&e.ID, &e.Name, &e.AccountableEmail, &activityType); err != nil {
		return nil, err
	}

	e.ActivityType = activityType.String
	return &e, nil
}

func scanRole(row scannable) (*model.Role, error) {
	var r model.Role
	var description sql.NullString

	if err := row.Scan(&r.ID, &r.EnterpriseID, &r.Name, &description, &r.Hierarchy); err != nil {
		return nil, err
	}

	r.Description = description.String
	return &r, nil
}

func scanScope(row scannable) (*model.Scope, error) {
	var s model.Scope
	var description sql.NullString

	if err := row.Scan(&s.ID, &s.EnterpriseID, &s.Name, &description); err != nil {
		return nil, err
	}

	s.Description = description.String
	return &s, nil
}

func scanUser(row scannable) (*model.User, error) {
	var u model.User
	var fullName sql.NullString

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&fullName,
		&u.RoleID,
		&u.ScopeID,
		&u.EnterpriseID,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.FullName = fullName.String
	return &u, nil
}

func scanUserView(row scannable) (*model.UserView, error) {
	var v model.UserView
	var fullName sql.NullString

	err := row.Scan(
		&v.ID,
		&v.Username,
		&v.Email,
		&fullName,
		&v.RoleID,
		&v.ScopeID,
		&v.EnterpriseID,
		&v.CreatedAt,
		&v.RoleName,
		&v.Hierarchy,
		&v.ScopeName,
	)
	if err != nil {
		return nil, err
	}

	v.FullName = fullName.String
	return &v, nil
}

// scanProduct scans a single row in productColumns order.
func scanProduct(row scannable) (*model.Product, error) {
	var p model.Product
	var (
		price         sql.NullFloat64
		description   sql.NullString
		updatedAt     sql.NullTime
		deletedAt     sql.NullTime
		createdBy     sql.NullInt64
		lastUpdatedBy sql.NullInt64
	)

	err := row.Scan(
		&p.ID,
		&p.EnterpriseID,
		&p.Name,
		&p.Cost,
		&price,
		&p.Stock,
		&description,
		&p.CreatedAt,
		&updatedAt,
		&deletedAt,
		&createdBy,
		&lastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	applyProductNulls(&p, price, description, updatedAt, deletedAt, createdBy, lastUpdatedBy)
	return &p, nil
}

func scanProductWithTotal(row scannable) (*model.Product, int, error) {
	var p model.Product
	var total int
	var (
		price         sql.NullFloat64
		description   sql.NullString
		updatedAt     sql.NullTime
		deletedAt     sql.NullTime
		createdBy     sql.NullInt64
		lastUpdatedBy sql.NullInt64
	)

	err := row.Scan(
		&total,
		&p.ID,
		&p.EnterpriseID,
		&p.Name,
		&p.Cost,
		&price,
		&p.Stock,
		&description,
		&p.CreatedAt,
		&updatedAt,
		&deletedAt,
		&createdBy,
		&lastUpdatedBy,
	)
	if err != nil {
		return nil, 0, err
	}

	applyProductNulls(&p, price, description, updatedAt, deletedAt, createdBy, lastUpdatedBy)
	return &p, total, nil
}

func applyProductNulls(p *model.Product, price sql.NullFloat64, description sql.NullString,
	updatedAt, deletedAt sql.NullTime, createdBy, lastUpdatedBy sql.NullInt64) {
	if price.Valid {
		f := price.Float64
		p.Price = &f
	}
	p.Description = description.String
	if updatedAt.Valid {
		t := updatedAt.Time
		p.UpdatedAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}
	p.CreatedBy = createdBy.Int64
	p.LastUpdatedBy = lastUpdatedBy.Int64
}

// nullString converts an empty string to a NULL value.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullInt64 converts a zero value to NULL.
func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

// nullTimePtr converts a nil *time.Time to a NULL value.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullFloatPtr converts a nil *float64 to a NULL value.
func nullFloatPtr(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
