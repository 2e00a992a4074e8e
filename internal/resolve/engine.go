// Package resolve implements the tenant/user resolution engine: it turns a
// parsed identity reference into a fully resolved identity record using the
// read-only configuration snapshot.
package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"webfingerd/internal/platform/metrics"
	"webfingerd/internal/resource"
	"webfingerd/internal/tenant/models"
	"webfingerd/internal/tenant/registry"
	pkgstrings "webfingerd/pkg/platform/strings"
)

// Sentinel errors for resolution failures. All are returned as values; the
// engine never uses errors for internal control flow and never retries
// (resolution is deterministic, retrying cannot change the outcome).
var (
	// ErrUnknownDomain means no tenant is configured for the domain.
	ErrUnknownDomain = errors.New("no tenant configured for domain")
	// ErrUnknownUser means the tenant exists, is not global, and the local
	// part is not enumerated.
	ErrUnknownUser = errors.New("local part not known to tenant")
	// ErrUnresolvedAlias means an attribute key has no alias table entry.
	// The loader rejects such configurations, so hitting this at request
	// time indicates a defect that escaped load-time validation; it is
	// fatal to the request, not to the process.
	ErrUnresolvedAlias = errors.New("attribute alias missing from alias table")
)

// Attribute is one merged, alias-resolved identity attribute.
type Attribute struct {
	// Name is the configuration alias the attribute was declared under.
	Name string
	// Rel is the canonical URN the alias resolved to.
	Rel string
	// Value is the configured attribute value.
	Value string
}

// Resolved is the resolution result for one request: the echoed subject,
// the merged and alias-resolved attributes in deterministic order, and any
// configured alternate identifiers.
type Resolved struct {
	Subject    string
	Attributes []Attribute
	Aliases    []string
}

// Engine resolves identity references against a registry snapshot. It holds
// no per-request state; a single Engine serves all concurrent requests.
type Engine struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewEngine constructs the resolution engine. metrics may be nil in tests.
func NewEngine(logger *slog.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, metrics: m}
}

// Resolve locates the owning tenant and user record for the identity,
// merges tenant and user attributes (user wins on key collision), resolves
// every alias to its canonical URN, and applies the optional relation
// filter. The merge is strictly two-level: tenant default, then user
// override; there is no deeper inheritance and no wildcard user matching.
//
// relFilter, when non-empty, retains only attributes whose resolved URN is
// in the set. An empty result after filtering is valid, not an error.
func (e *Engine) Resolve(snap *registry.Snapshot, id resource.Identity, relFilter []string) (*Resolved, error) {
	start := time.Now()

	res, err := e.resolve(snap, id, relFilter)

	if e.metrics != nil {
		e.metrics.ObserveResolve(start)
		e.metrics.IncrementResolution(outcomeLabel(err))
	}
	return res, err
}

func (e *Engine) resolve(snap *registry.Snapshot, id resource.Identity, relFilter []string) (*Resolved, error) {
	tenant, ok := snap.FindTenant(id.Domain)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, id.Domain)
	}

	merged := tenant.Attributes.Clone()
	aliases := tenant.Aliases

	user, ok := tenant.User(id.LocalPart)
	switch {
	case ok:
		for name, value := range user.Attributes {
			merged[name] = value
		}
		aliases = append(append([]string(nil), aliases...), user.Aliases...)
	case tenant.Global:
		// Synthesized identity: tenant-level attributes only.
	default:
		return nil, fmt.Errorf("%w: %s@%s", ErrUnknownUser, id.LocalPart, id.Domain)
	}

	attrs, err := e.resolveAliases(snap, tenant, merged)
	if err != nil {
		return nil, err
	}

	if len(relFilter) > 0 {
		attrs = filterByRel(attrs, relFilter)
	}

	return &Resolved{
		Subject:    id.Raw,
		Attributes: attrs,
		Aliases:    pkgstrings.DedupeAndTrim(aliases),
	}, nil
}

// resolveAliases maps every merged attribute key to its canonical URN,
// emitting attributes in lexicographic alias order so identical input
// always yields identical output.
func (e *Engine) resolveAliases(snap *registry.Snapshot, tenant *models.Tenant, merged models.Attributes) ([]Attribute, error) {
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make([]Attribute, 0, len(names))
	for _, name := range names {
		urn, ok := snap.Aliases().Resolve(name)
		if !ok {
			e.logger.Error("attribute alias escaped load-time validation",
				"alias", name,
				"tenant", tenant.Name,
				"domain", tenant.Domain,
			)
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedAlias, name)
		}
		attrs = append(attrs, Attribute{Name: name, Rel: urn, Value: merged[name]})
	}
	return attrs, nil
}

func filterByRel(attrs []Attribute, relFilter []string) []Attribute {
	wanted := make(map[string]struct{}, len(relFilter))
	for _, rel := range relFilter {
		wanted[rel] = struct{}{}
	}

	kept := attrs[:0]
	for _, attr := range attrs {
		if _, ok := wanted[attr.Rel]; ok {
			kept = append(kept, attr)
		}
	}
	return kept
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownDomain):
		return "unknown_domain"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrUnresolvedAlias):
		return "unresolved_alias"
	default:
		return "error"
	}
}
