// internal/policy/registry.go
package policy

import (
	"github.com/taskhub/taskhub/internal/models"
)

// RouteID identifies a route by its handler group and method name, e.g.
// {Group: "users", Name: "update"}. Policies can be attached at either level;
// a method-level policy overrides the group-level policy of the same kind.
type RouteID struct {
	Group string
	Name  string
}

func (r RouteID) String() string {
	return r.Group + "." + r.Name
}

type policyKind int

const (
	kindPublic policyKind = iota
	kindRequiredRoles
)

// Policy is a declarative requirement attached to a route. Exactly two kinds
// exist: a public-access flag and a required-role set.
type Policy struct {
	kind   policyKind
	public bool
	roles  []models.Role
}

// Public marks a route as requiring no authentication.
func Public() Policy {
	return Policy{kind: kindPublic, public: true}
}

// Authenticated marks a route as requiring authentication. Only useful as a
// method-level override inside a public group; routes default to this.
func Authenticated() Policy {
	return Policy{kind: kindPublic, public: false}
}

// RequireRoles restricts a route to principals whose role is in the set.
// An empty set means no restriction.
func RequireRoles(roles ...models.Role) Policy {
	return Policy{kind: kindRequiredRoles, roles: roles}
}

// RoutePolicies is the merged policy view for a single route.
type RoutePolicies struct {
	// Public bypasses the authentication gate entirely.
	Public bool
	// RequiredRoles restricts the route to the listed roles. A nil or empty
	// slice means any caller that passed authentication may proceed.
	RequiredRoles []models.Role
}

// RoleAllowed reports whether the role satisfies the required-role set.
// An empty set imposes no restriction.
func (rp RoutePolicies) RoleAllowed(role models.Role) bool {
	if len(rp.RequiredRoles) == 0 {
		return true
	}
	for _, r := range rp.RequiredRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Registry associates routes with their declared policies. It is populated
// once at startup from the route table and is read-only afterwards, which
// makes concurrent reads safe without locking.
type Registry struct {
	routes map[string][]Policy
	groups map[string][]Policy
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{
		routes: make(map[string][]Policy),
		groups: make(map[string][]Policy),
	}
}

// Register attaches policies to a specific route.
func (r *Registry) Register(id RouteID, policies ...Policy) {
	r.mustBeMutable()
	r.routes[id.String()] = append(r.routes[id.String()], policies...)
}

// RegisterGroup attaches policies to every route in a handler group.
// Method-level policies of the same kind take precedence.
func (r *Registry) RegisterGroup(group string, policies ...Policy) {
	r.mustBeMutable()
	r.groups[group] = append(r.groups[group], policies...)
}

// Freeze marks the registry as fully populated. Any later registration is a
// programming error and panics.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) mustBeMutable() {
	if r.frozen {
		panic("policy: registry mutated after startup")
	}
}

// PoliciesFor returns the merged policy view for a route. Group-level entries
// apply first, method-level entries of the same kind override them. A route
// with no registrations gets the defaults: authentication required, any role
// accepted.
func (r *Registry) PoliciesFor(id RouteID) RoutePolicies {
	merged := RoutePolicies{}
	for _, p := range r.groups[id.Group] {
		apply(&merged, p)
	}
	for _, p := range r.routes[id.String()] {
		apply(&merged, p)
	}
	return merged
}

func apply(rp *RoutePolicies, p Policy) {
	switch p.kind {
	case kindPublic:
		rp.Public = p.public
	case kindRequiredRoles:
		rp.RequiredRoles = p.roles
	}
}
