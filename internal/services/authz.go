package services

import (
	"eventmanagement/internal/domain"
)

// AuthorizationGuard decides ownership/role-based access for events.
// Both predicates are pure functions over the caller's verified identity and
// the event's current persisted state; callers must load the event fresh
// before asking, so decisions never run against stale ownership.
type AuthorizationGuard struct{}

func NewAuthorizationGuard() *AuthorizationGuard {
	return &AuthorizationGuard{}
}

// CanMutateEvent reports whether caller may update or delete the event:
// true iff the caller is the event's host or holds the ADMIN role.
func (g *AuthorizationGuard) CanMutateEvent(caller domain.Identity, event *domain.Event) bool {
	return caller.ID == event.HostID || caller.Role == domain.RoleAdmin
}

// CanViewEvent reports whether caller may read the event. PUBLIC events are
// readable by any authenticated identity; PRIVATE events only by the host or
// an admin.
func (g *AuthorizationGuard) CanViewEvent(caller domain.Identity, event *domain.Event) bool {
	if event.IsPublic() {
		return true
	}
	return g.CanMutateEvent(caller, event)
}
