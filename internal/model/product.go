package model

import "time"

// Product is an inventory item owned by an enterprise. Deletion is soft:
// DeletedAt is set and the row is excluded from reads.
type Product struct {
	ID            int64      `json:"id"`
	EnterpriseID  int64      `json:"enterprise_id"`
	Name          string     `json:"name"`
	Cost          float64    `json:"cost"`
	Price         *float64   `json:"price,omitempty"`
	Stock         int        `json:"stock"`
	Description   string     `json:"description,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedBy     int64      `json:"created_by,omitempty"`
	LastUpdatedBy int64      `json:"last_updated_by,omitempty"`
}

// ProductFilter narrows ListProducts results. EnterpriseID is required; the
// REST surface always scopes listings to the acting user's enterprise.
type ProductFilter struct {
	EnterpriseID int64
	Search       string
	Limit        int
	Offset       int
}
