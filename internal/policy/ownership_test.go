// internal/policy/ownership_test.go
package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskhub/taskhub/internal/models"
)

func TestCanMutate(t *testing.T) {
	owner := models.Principal{ID: "user-1", Role: models.RoleMember, Active: true}
	other := models.Principal{ID: "user-2", Role: models.RoleMember, Active: true}
	admin := models.Principal{ID: "user-3", Role: models.RoleAdmin, Active: true}
	manager := models.Principal{ID: "user-4", Role: models.RoleManager, Active: true}

	tests := []struct {
		name     string
		actor    models.Principal
		ownerID  string
		override []models.Role
		want     bool
	}{
		{"actor is owner, non-admin", owner, "user-1", []models.Role{models.RoleAdmin}, true},
		{"actor not owner, non-admin", other, "user-1", []models.Role{models.RoleAdmin}, false},
		{"actor not owner, admin override", admin, "user-1", []models.Role{models.RoleAdmin}, true},
		{"actor not owner, role outside override", manager, "user-1", []models.Role{models.RoleAdmin}, false},
		{"manager allowed when override includes manager", manager, "user-1", []models.Role{models.RoleAdmin, models.RoleManager}, true},
		{"no override set, not owner", admin, "user-1", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(tt.actor, tt.ownerID, tt.override...))
		})
	}
}

func TestCanMutateRestrictedFields(t *testing.T) {
	restricted := []string{"role", "is_active"}
	admin := models.Principal{ID: "a", Role: models.RoleAdmin, Active: true}
	member := models.Principal{ID: "m", Role: models.RoleMember, Active: true}

	tests := []struct {
		name   string
		actor  models.Principal
		fields []string
		want   bool
	}{
		{"admin may touch restricted fields", admin, []string{"role"}, true},
		{"member touching restricted field is rejected", member, []string{"first_name", "role"}, false},
		{"member touching is_active is rejected", member, []string{"is_active"}, false},
		{"member touching only unrestricted fields passes", member, []string{"first_name", "last_name"}, true},
		{"member with no fields passes", member, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutateRestrictedFields(tt.actor, tt.fields, restricted, models.RoleAdmin))
		})
	}
}
