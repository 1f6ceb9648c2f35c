package model

import "testing"

func TestDefaultHierarchy(t *testing.T) {
	for _, tc := range []struct {
		role string
		want int
	}{
		{RoleOwner, 0},
		{RoleManager, 1},
		{RoleCollaborator, 2},
		{"Intern", -1},
		{"", -1},
	} {
		if got := DefaultHierarchy(tc.role); got != tc.want {
			t.Errorf("DefaultHierarchy(%q) = %d, want %d", tc.role, got, tc.want)
		}
	}

	// Owner outranks manager outranks collaborator.
	if !(DefaultHierarchy(RoleOwner) < DefaultHierarchy(RoleManager)) {
		t.Error("owner should outrank manager")
	}
	if !(DefaultHierarchy(RoleManager) < DefaultHierarchy(RoleCollaborator)) {
		t.Error("manager should outrank collaborator")
	}
}

func TestUserAllowedScope(t *testing.T) {
	for _, tc := range []struct {
		scope string
		want  bool
	}{
		{ScopeAll, true},
		{ScopeSells, true},
		{ScopePatrimonial, false},
		{ScopeHumanResource, false},
		{"", false},
	} {
		if got := UserAllowedScope(tc.scope); got != tc.want {
			t.Errorf("UserAllowedScope(%q) = %v, want %v", tc.scope, got, tc.want)
		}
	}
}

func TestValidateProduct(t *testing.T) {
	valid := &Product{Name: "Forklift", Cost: 1200, Stock: 2, EnterpriseID: 1}
	if err := ValidateProduct(valid); err != nil {
		t.Fatalf("expected valid product, got %v", err)
	}

	negPrice := -10.0
	tests := []struct {
		name    string
		product *Product
		field   string
	}{
		{"missing name", &Product{Cost: 1, EnterpriseID: 1}, "name"},
		{"negative cost", &Product{Name: "x", Cost: -1, EnterpriseID: 1}, "cost"},
		{"negative stock", &Product{Name: "x", Stock: -1, EnterpriseID: 1}, "stock"},
		{"negative price", &Product{Name: "x", Price: &negPrice, EnterpriseID: 1}, "price"},
		{"missing enterprise", &Product{Name: "x"}, "enterprise_id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateProduct(tc.product)
			if err == nil {
				t.Fatal("expected validation error")
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			found := false
			for _, fe := range ve.Errors {
				if fe.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tc.field, ve)
			}
		})
	}
}
