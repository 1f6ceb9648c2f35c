package sync

import (
	"context"
	"database/sql"
	"sort"

	"github.com/mfrancani/patrimonio/internal/model"
	"github.com/mfrancani/patrimonio/internal/store"
)

// mockStore is a minimal in-memory store for export tests.
type mockStore struct {
	enterprises map[int64]*model.Enterprise
	roles       map[int64]*model.Role
	scopes      map[int64]*model.Scope
	users       map[int64]*model.User
	products    map[int64]*model.Product
}

func newMockStore() *mockStore {
	return &mockStore{
		enterprises: make(map[int64]*model.Enterprise),
		roles:       make(map[int64]*model.Role),
		scopes:      make(map[int64]*model.Scope),
		users:       make(map[int64]*model.User),
		products:    make(map[int64]*model.Product),
	}
}

func (m *mockStore) CreateEnterprise(_ context.Context, e *model.Enterprise) error {
	m.enterprises[e.ID] = e
	return nil
}

func (m *mockStore) GetEnterprise(_ context.Context, id int64) (*model.Enterprise, error) {
	e, ok := m.enterprises[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (m *mockStore) ListEnterprises(_ context.Context) ([]*model.Enterprise, error) {
	var result []*model.Enterprise
	for _, e := range m.enterprises {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateEnterprise(_ context.Context, e *model.Enterprise) error {
	m.enterprises[e.ID] = e
	return nil
}

func (m *mockStore) DeleteEnterprise(_ context.Context, id int64) error {
	delete(m.enterprises, id)
	return nil
}

func (m *mockStore) CreateRole(_ context.Context, r *model.Role) error {
	m.roles[r.ID] = r
	return nil
}

func (m *mockStore) GetRole(_ context.Context, id int64) (*model.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return r, nil
}

func (m *mockStore) FindRoleByName(_ context.Context, _ int64, _ string) (*model.Role, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListRoles(_ context.Context, enterpriseID int64) ([]*model.Role, error) {
	var result []*model.Role
	for _, r := range m.roles {
		if r.EnterpriseID == enterpriseID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) CreateScope(_ context.Context, s *model.Scope) error {
	m.scopes[s.ID] = s
	return nil
}

func (m *mockStore) GetScope(_ context.Context, id int64) (*model.Scope, error) {
	s, ok := m.scopes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStore) FindScopeByName(_ context.Context, _ int64, _ string) (*model.Scope, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListScopes(_ context.Context, enterpriseID int64) ([]*model.Scope, error) {
	var result []*model.Scope
	for _, s := range m.scopes {
		if s.EnterpriseID == enterpriseID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) CreateUser(_ context.Context, u *model.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockStore) GetUserView(_ context.Context, id int64) (*model.UserView, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &model.UserView{User: *u}, nil
}

func (m *mockStore) ListUsers(_ context.Context, enterpriseID int64) ([]*model.User, error) {
	var result []*model.User
	for _, u := range m.users {
		if u.EnterpriseID == enterpriseID {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateUser(_ context.Context, u *model.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockStore) DeleteUser(_ context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

func (m *mockStore) CreateProduct(_ context.Context, p *model.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockStore) GetProduct(_ context.Context, id, enterpriseID int64) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok || p.EnterpriseID != enterpriseID {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (m *mockStore) ListProducts(_ context.Context, filter model.ProductFilter) ([]*model.Product, int, error) {
	var result []*model.Product
	for _, p := range m.products {
		if p.EnterpriseID == filter.EnterpriseID && p.DeletedAt == nil {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *mockStore) UpdateProduct(_ context.Context, p *model.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockStore) DeleteProduct(_ context.Context, id, _ int64) error {
	delete(m.products, id)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
