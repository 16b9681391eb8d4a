package access

import (
	"testing"

	"github.com/google/uuid"
)

func TestOwnerClauseScopesNonAdmins(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleSDR}

	clause, args := OwnerClause(actor, "l.owner_id", 2)
	if clause != " AND l.owner_id = $2" {
		t.Errorf("unexpected clause %q", clause)
	}
	if len(args) != 1 || args[0] != actor.ID {
		t.Errorf("expected actor ID as the only argument, got %v", args)
	}
}

func TestOwnerClauseIsEmptyForAdmins(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleAdmin}

	clause, args := OwnerClause(actor, "owner_id", 1)
	if clause != "" || args != nil {
		t.Errorf("admin must not be scoped, got %q %v", clause, args)
	}
}

func TestCanActOn(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	cases := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owner sdr", Actor{ID: owner, Role: RoleSDR}, true},
		{"other sdr", Actor{ID: other, Role: RoleSDR}, false},
		{"other closer", Actor{ID: other, Role: RoleCloser}, false},
		{"admin override", Actor{ID: other, Role: RoleAdmin}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.actor.CanActOn(owner); got != tc.want {
				t.Errorf("CanActOn = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleSDR, RoleCloser} {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}
	if Role("manager").Valid() {
		t.Error("unknown role should be invalid")
	}
}
