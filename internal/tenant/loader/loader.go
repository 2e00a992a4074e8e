// Package loader builds the registry snapshot from declarative YAML
// configuration: a URN alias file plus one or more tenant definition files.
//
// All invariants the resolution engine relies on are enforced here, before
// a snapshot is ever put into service: unique domains, non-empty local
// parts, and every attribute alias resolvable against the alias table.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asaskevich/govalidator"
	"gopkg.in/yaml.v3"

	"webfingerd/internal/alias"
	"webfingerd/internal/tenant/models"
	"webfingerd/internal/tenant/registry"
)

type tenantYAML struct {
	Domain     string              `yaml:"domain"`
	Global     bool                `yaml:"global"`
	OpenID     string              `yaml:"openid"`
	Attributes map[string]string   `yaml:"attributes"`
	Aliases    []string            `yaml:"aliases"`
	Users      map[string]userYAML `yaml:"users"`
}

type userYAML struct {
	Attributes map[string]string `yaml:"attributes"`
	Aliases    []string          `yaml:"aliases"`
}

// Load reads the alias file and every tenant file under dir, validates the
// combined configuration, and returns an immutable snapshot ready to serve.
// A missing alias file yields an empty alias table; tenants referencing any
// alias then fail validation with a pointed error.
func Load(aliasPath, dir string) (*registry.Snapshot, error) {
	table, err := loadAliases(aliasPath)
	if err != nil {
		return nil, err
	}

	defs, err := loadTenantFiles(dir)
	if err != nil {
		return nil, err
	}

	// Sorted for deterministic validation errors across runs.
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	tenants := make([]*models.Tenant, 0, len(defs))
	for _, name := range names {
		t, err := buildTenant(name, defs[name], table)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}

	return registry.NewSnapshot(table, tenants)
}

func loadAliases(path string) (*alias.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return alias.NewTable(nil), nil
		}
		return nil, fmt.Errorf("read alias file %s: %w", path, err)
	}

	urns := map[string]string{}
	if err := yaml.Unmarshal(content, &urns); err != nil {
		return nil, fmt.Errorf("parse alias file %s: %w", path, err)
	}
	for name, urn := range urns {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(urn) == "" {
			return nil, fmt.Errorf("alias file %s: alias %q has empty name or URN", path, name)
		}
	}
	return alias.NewTable(urns), nil
}

func loadTenantFiles(dir string) (map[string]tenantYAML, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]tenantYAML{}, nil
		}
		return nil, fmt.Errorf("read config dir %s: %w", dir, err)
	}

	defs := map[string]tenantYAML{}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tenant file %s: %w", path, err)
		}

		fileDefs := map[string]tenantYAML{}
		if err := yaml.Unmarshal(content, &fileDefs); err != nil {
			return nil, fmt.Errorf("parse tenant file %s: %w", path, err)
		}
		for name, def := range fileDefs {
			if _, ok := defs[name]; ok {
				return nil, fmt.Errorf("tenant %q defined more than once (last in %s)", name, path)
			}
			defs[name] = def
		}
	}
	return defs, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yml" || ext == ".yaml"
}

func buildTenant(name string, def tenantYAML, table *alias.Table) (*models.Tenant, error) {
	domain := strings.TrimSpace(def.Domain)
	if domain == "" {
		return nil, fmt.Errorf("tenant %q: domain is required", name)
	}
	if !govalidator.IsDNSName(domain) {
		return nil, fmt.Errorf("tenant %q: %q is not a valid domain", name, domain)
	}

	attrs := models.Attributes{}
	for key, value := range def.Attributes {
		attrs[key] = value
	}
	// Tenant-level "openid" shorthand kept for older configurations.
	if def.OpenID != "" {
		if _, ok := attrs["openid"]; ok {
			return nil, fmt.Errorf("tenant %q: openid declared both as shorthand and in attributes", name)
		}
		attrs["openid"] = def.OpenID
	}
	if err := validateAttributes(name, "", attrs, table); err != nil {
		return nil, err
	}

	users := make(map[string]models.UserRecord, len(def.Users))
	for localPart, u := range def.Users {
		if strings.TrimSpace(localPart) == "" {
			return nil, fmt.Errorf("tenant %q: user local part must not be empty", name)
		}
		userAttrs := models.Attributes{}
		for key, value := range u.Attributes {
			userAttrs[key] = value
		}
		if err := validateAttributes(name, localPart, userAttrs, table); err != nil {
			return nil, err
		}
		users[localPart] = models.UserRecord{
			Attributes: userAttrs,
			Aliases:    u.Aliases,
		}
	}

	return &models.Tenant{
		Name:       name,
		Domain:     domain,
		Global:     def.Global,
		Attributes: attrs,
		Aliases:    def.Aliases,
		Users:      users,
	}, nil
}

// validateAttributes rejects unresolved aliases and empty values at load
// time so the engine's defensive unresolved-alias path never fires for a
// configuration that passed validation.
func validateAttributes(tenant, localPart string, attrs models.Attributes, table *alias.Table) error {
	where := fmt.Sprintf("tenant %q", tenant)
	if localPart != "" {
		where = fmt.Sprintf("tenant %q user %q", tenant, localPart)
	}
	for key, value := range attrs {
		if _, ok := table.Resolve(key); !ok {
			return fmt.Errorf("%s: attribute %q has no URN alias entry", where, key)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s: attribute %q has an empty value", where, key)
		}
	}
	return nil
}
