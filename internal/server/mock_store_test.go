package server

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/mfrancani/patrimonio/internal/model"
	"github.com/mfrancani/patrimonio/internal/store"
)

// mockStore is a minimal in-memory store for handler tests.
type mockStore struct {
	enterprises map[int64]*model.Enterprise
	roles       map[int64]*model.Role
	scopes      map[int64]*model.Scope
	users       map[int64]*model.User
	products    map[int64]*model.Product
	nextProduct int64
}

func newMockStore() *mockStore {
	return &mockStore{
		enterprises: make(map[int64]*model.Enterprise),
		roles:       make(map[int64]*model.Role),
		scopes:      make(map[int64]*model.Scope),
		users:       make(map[int64]*model.User),
		products:    make(map[int64]*model.Product),
		nextProduct: 1,
	}
}

// addUser wires a user with its role and scope in one call.
func (m *mockStore) addUser(id int64, enterpriseID int64, roleName string, hierarchy int, scopeName string) {
	roleID := int64(100 + id)
	scopeID := int64(200 + id)
	m.roles[roleID] = &model.Role{ID: roleID, EnterpriseID: enterpriseID, Name: roleName, Hierarchy: hierarchy}
	m.scopes[scopeID] = &model.Scope{ID: scopeID, EnterpriseID: enterpriseID, Name: scopeName}
	m.users[id] = &model.User{ID: id, Username: "user", RoleID: roleID, ScopeID: scopeID, EnterpriseID: enterpriseID}
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
	return nil, nil
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

func (m *mockStore) ListRoles(_ context.Context, _ int64) ([]*model.Role, error) {
	return nil, nil
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

func (m *mockStore) ListScopes(_ context.Context, _ int64) ([]*model.Scope, error) {
	return nil, nil
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
	view := &model.UserView{User: *u}
	if r, ok := m.roles[u.RoleID]; ok {
		view.RoleName = r.Name
		view.Hierarchy = r.Hierarchy
	}
	if s, ok := m.scopes[u.ScopeID]; ok {
		view.ScopeName = s.Name
	}
	return view, nil
}

func (m *mockStore) ListUsers(_ context.Context, _ int64) ([]*model.User, error) {
	return nil, nil
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
	p.ID = m.nextProduct
	m.nextProduct++
	m.products[p.ID] = p
	return nil
}

func (m *mockStore) GetProduct(_ context.Context, id, enterpriseID int64) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok || p.EnterpriseID != enterpriseID || p.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) ListProducts(_ context.Context, filter model.ProductFilter) ([]*model.Product, int, error) {
	var result []*model.Product
	for _, p := range m.products {
		if p.EnterpriseID != filter.EnterpriseID || p.DeletedAt != nil {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	total := len(result)
	if filter.Offset > 0 && filter.Offset < len(result) {
		result = result[filter.Offset:]
	} else if filter.Offset >= len(result) {
		result = nil
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, total, nil
}

func (m *mockStore) UpdateProduct(_ context.Context, p *model.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockStore) DeleteProduct(_ context.Context, id, enterpriseID int64) error {
	p, ok := m.products[id]
	if !ok || p.EnterpriseID != enterpriseID {
		return nil
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
