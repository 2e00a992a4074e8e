package models

// Attributes maps a short alias name (e.g. "openid", "avatar") to its
// configured value. Values are either plain strings (rendered as document
// properties) or absolute URLs (rendered as links).
type Attributes map[string]string

// Clone returns a shallow copy, safe to overlay without touching the source.
func (a Attributes) Clone() Attributes {
	copied := make(Attributes, len(a))
	for name, value := range a {
		copied[name] = value
	}
	return copied
}

// UserRecord holds per-user identity attributes.
//
// Attributes override tenant-level attributes of the same alias for this
// user; Aliases are alternate identifiers appended to the tenant-level list.
// The user's full identifier is implicit: localpart@tenant-domain.
type UserRecord struct {
	Attributes Attributes
	Aliases    []string
}

// Tenant is a configured owner of exactly one domain.
//
// Invariants (enforced by the loader before a tenant enters the registry):
//   - Domain is non-empty and unique across the whole registry
//   - every alias name used in Attributes or any UserRecord resolves in the
//     alias table
//   - user local parts are non-empty
//
// A tenant with Global set accepts any local part at its domain even when
// the local part is not enumerated in Users; resolution then uses the
// tenant-level attributes alone. Tenants are immutable after load: the
// resolution hot path reads them without locks.
type Tenant struct {
	// Name is the configuration key the tenant was declared under. It is
	// informational only and never matched against requests.
	Name string

	Domain     string
	Global     bool
	Attributes Attributes
	Aliases    []string

	// Users maps local part (case-sensitive) to the user's record. Empty
	// when the tenant relies solely on Global.
	Users map[string]UserRecord
}

// User returns the record for a local part, if enumerated.
func (t *Tenant) User(localPart string) (UserRecord, bool) {
	u, ok := t.Users[localPart]
	return u, ok
}
