// Package sync periodically exports the inventory dataset to backup
// destinations as JSONL snapshots.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mfrancani/patrimonio/internal/model"
	"github.com/mfrancani/patrimonio/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version         string    `json:"version"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	EnterpriseCount int       `json:"enterprise_count"`
	UserCount       int       `json:"user_count"`
	ProductCount    int       `json:"product_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes the whole dataset as JSONL to w: one header record,
// then each enterprise with its roles and scopes embedded, then the users
// and products of every enterprise.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	enterprises, err := s.ListEnterprises(ctx)
	if err != nil {
		return fmt.Errorf("list enterprises: %w", err)
	}

	var users []*model.User
	var products []*model.Product
	for _, ent := range enterprises {
		roles, err := s.ListRoles(ctx, ent.ID)
		if err != nil {
			return fmt.Errorf("list roles for %d: %w", ent.ID, err)
		}
		ent.Roles = roles

		scopes, err := s.ListScopes(ctx, ent.ID)
		if err != nil {
			return fmt.Errorf("list scopes for %d: %w", ent.ID, err)
		}
		ent.Scopes = scopes

		us, err := s.ListUsers(ctx, ent.ID)
		if err != nil {
			return fmt.Errorf("list users for %d: %w", ent.ID, err)
		}
		users = append(users, us...)

		ps, _, err := s.ListProducts(ctx, model.ProductFilter{EnterpriseID: ent.ID})
		if err != nil {
			return fmt.Errorf("list products for %d: %w", ent.ID, err)
		}
		products = append(products, ps...)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:         "1",
		Type:            "header",
		Timestamp:       time.Now().UTC(),
		EnterpriseCount: len(enterprises),
		UserCount:       len(users),
		ProductCount:    len(products),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, ent := range enterprises {
		if err := enc.Encode(record{Type: "enterprise", Data: ent}); err != nil {
			return fmt.Errorf("encode enterprise %d: %w", ent.ID, err)
		}
	}
	for _, u := range users {
		if err := enc.Encode(record{Type: "user", Data: u}); err != nil {
			return fmt.Errorf("encode user %d: %w", u.ID, err)
		}
	}
	for _, p := range products {
		if err := enc.Encode(record{Type: "product", Data: p}); err != nil {
			return fmt.Errorf("encode product %d: %w", p.ID, err)
		}
	}

	return nil
}
