package model

// Requester is the identity on whose behalf an operation runs.  Identity
// and role come from the external auth provider; the admin capability is
// carried as a flag rather than a distinct type.
type Requester struct {
	UserID  *uint64 // nil for unauthenticated (guest) callers
	Role    string  // raw role claim, informational
	IsAdmin bool    // administrative capability
}

// Guest is the requester used when no credentials were presented.
var Guest = Requester{}

// Authenticated reports whether the requester carries a user identity.
func (r Requester) Authenticated() bool { return r.UserID != nil }
