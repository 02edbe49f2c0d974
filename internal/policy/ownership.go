// internal/policy/ownership.go
package policy

import "github.com/taskhub/taskhub/internal/models"

// CanMutate decides whether an actor may mutate a resource owned by another
// principal: either the actor is the owner, or the actor's role is in the
// override set. Pure function; callers raise the denial themselves.
func CanMutate(actor models.Principal, targetOwnerID string, adminOverride ...models.Role) bool {
	if actor.ID == targetOwnerID {
		return true
	}
	for _, role := range adminOverride {
		if actor.Role == role {
			return true
		}
	}
	return false
}

// CanMutateRestrictedFields decides whether an actor may touch fields from
// the restricted set. An actor without the required role is rejected as soon
// as any requested field intersects the restricted set, independent of
// ownership.
func CanMutateRestrictedFields(actor models.Principal, fields, restrictedFields []string, requiredRole models.Role) bool {
	if actor.Role == requiredRole {
		return true
	}
	restricted := make(map[string]struct{}, len(restrictedFields))
	for _, f := range restrictedFields {
		restricted[f] = struct{}{}
	}
	for _, f := range fields {
		if _, ok := restricted[f]; ok {
			return false
		}
	}
	return true
}
