package hrsync

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/mfrancani/patrimonio/internal/model"
	"github.com/mfrancani/patrimonio/internal/store"
)

// mockStore is a minimal in-memory store for pipeline tests. beginErrs and
// txErrs inject failures: each call to RunInTransaction consumes the next
// entry, a nil entry means success.
type mockStore struct {
	enterprises map[int64]*model.Enterprise
	roles       map[int64]*model.Role
	scopes      map[int64]*model.Scope
	users       map[int64]*model.User
	products    map[int64]*model.Product
	nextProduct int64

	beginErrs []error
	txErrs    []error
	calls     int
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

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	call := m.calls
	m.calls++
	if call < len(m.beginErrs) && m.beginErrs[call] != nil {
		return fmt.Errorf("begin transaction: %w: %v", store.ErrUnavailable, m.beginErrs[call])
	}
	if call < len(m.txErrs) && m.txErrs[call] != nil {
		return m.txErrs[call]
	}
	return fn(m)
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
	cp := *e
	return &cp, nil
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
	for rid, r := range m.roles {
		if r.EnterpriseID == id {
			delete(m.roles, rid)
		}
	}
	for sid, s := range m.scopes {
		if s.EnterpriseID == id {
			delete(m.scopes, sid)
		}
	}
	for uid, u := range m.users {
		if u.EnterpriseID == id {
			delete(m.users, uid)
		}
	}
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

func (m *mockStore) FindRoleByName(_ context.Context, enterpriseID int64, name string) (*model.Role, error) {
	for _, r := range m.roles {
		if r.EnterpriseID == enterpriseID && strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
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

func (m *mockStore) FindScopeByName(_ context.Context, enterpriseID int64, name string) (*model.Scope, error) {
	for _, s := range m.scopes {
		if s.EnterpriseID == enterpriseID && strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
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
	cp := *u
	return &cp, nil
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
	return result, len(result), nil
}

func (m *mockStore) UpdateProduct(_ context.Context, p *model.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockStore) DeleteProduct(_ context.Context, id, enterpriseID int64) error {
	p, ok := m.products[id]
	if !ok || p.EnterpriseID != enterpriseID {
		return sql.ErrNoRows
	}
	delete(m.products, id)
	return nil
}

func (m *mockStore) Close() error { return nil }
