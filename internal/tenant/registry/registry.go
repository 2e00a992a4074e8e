// Package registry holds the immutable tenant snapshot shared by all
// in-flight requests.
package registry

import (
	"fmt"
	"sync/atomic"

	"webfingerd/internal/alias"
	"webfingerd/internal/tenant/models"
)

// Snapshot is a fully built, read-only view of the configuration: the alias
// table plus every tenant keyed by domain. A snapshot is never mutated after
// NewSnapshot returns, so readers need no locks.
type Snapshot struct {
	aliases  *alias.Table
	byDomain map[string]*models.Tenant
}

// NewSnapshot indexes tenants by domain. Duplicate domains are a
// configuration error: two tenants must never claim the same domain.
func NewSnapshot(aliases *alias.Table, tenants []*models.Tenant) (*Snapshot, error) {
	byDomain := make(map[string]*models.Tenant, len(tenants))
	for _, t := range tenants {
		if existing, ok := byDomain[t.Domain]; ok {
			return nil, fmt.Errorf("domain %q claimed by both tenant %q and tenant %q", t.Domain, existing.Name, t.Name)
		}
		byDomain[t.Domain] = t
	}
	return &Snapshot{aliases: aliases, byDomain: byDomain}, nil
}

// FindTenant looks up a tenant by exact, case-sensitive domain match. There
// is no wildcard or subdomain matching: a tenant configured for mysite.com
// does not own sub.mysite.com.
func (s *Snapshot) FindTenant(domain string) (*models.Tenant, bool) {
	t, ok := s.byDomain[domain]
	return t, ok
}

// Aliases returns the alias table loaded with this snapshot.
func (s *Snapshot) Aliases() *alias.Table {
	return s.aliases
}

// TenantCount reports the number of tenants in the snapshot.
func (s *Snapshot) TenantCount() int {
	return len(s.byDomain)
}

// UserCount reports the total number of enumerated users across all tenants.
func (s *Snapshot) UserCount() int {
	n := 0
	for _, t := range s.byDomain {
		n += len(t.Users)
	}
	return n
}

// Registry hands out the current snapshot and supports whole-snapshot
// replacement for configuration reload. Readers never observe a partially
// updated registry: Swap publishes a fully built snapshot atomically.
type Registry struct {
	current atomic.Pointer[Snapshot]
}

// New creates a registry serving the given initial snapshot.
func New(initial *Snapshot) *Registry {
	r := &Registry{}
	r.current.Store(initial)
	return r
}

// Snapshot returns the snapshot to use for one request. Callers must load it
// once and pass it through their whole request so the view stays consistent
// across a concurrent reload.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Swap atomically replaces the served snapshot.
func (r *Registry) Swap(next *Snapshot) {
	r.current.Store(next)
}
