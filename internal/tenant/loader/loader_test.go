package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const urnsYAML = `
name: http://schema.org/name
avatar: http://webfinger.net/rel/avatar
openid: http://openid.net/specs/connect/1.0/issuer
`

const tenantsYAML = `
mysite:
  domain: mysite.com
  attributes:
    openid: https://auth.mysite.com
  users:
    user1:
      attributes:
        name: First User
        avatar: https://mysite.com/user1-pic
      aliases:
        - acct:first@mysite.com
othersite:
  domain: othersite.com
  global: true
  attributes:
    openid: https://auth.othersite.com
`

func writeConfig(t *testing.T, urns string, tenantFiles map[string]string) (aliasPath, dir string) {
	t.Helper()
	root := t.TempDir()

	aliasPath = filepath.Join(root, "urns.yml")
	if urns != "" {
		require.NoError(t, os.WriteFile(aliasPath, []byte(urns), 0o600))
	}

	dir = filepath.Join(root, "config")
	require.NoError(t, os.Mkdir(dir, 0o700))
	for name, content := range tenantFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return aliasPath, dir
}

func TestLoadBuildsSnapshot(t *testing.T) {
	aliasPath, dir := writeConfig(t, urnsYAML, map[string]string{"tenants.yml": tenantsYAML})

	snap, err := Load(aliasPath, dir)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.TenantCount())
	assert.Equal(t, 1, snap.UserCount())
	assert.Equal(t, 3, snap.Aliases().Len())

	mysite, ok := snap.FindTenant("mysite.com")
	require.True(t, ok)
	assert.Equal(t, "mysite", mysite.Name)
	assert.False(t, mysite.Global)

	user, ok := mysite.User("user1")
	require.True(t, ok)
	assert.Equal(t, "First User", user.Attributes["name"])
	assert.Equal(t, []string{"acct:first@mysite.com"}, user.Aliases)

	othersite, ok := snap.FindTenant("othersite.com")
	require.True(t, ok)
	assert.True(t, othersite.Global)
	assert.Equal(t, "https://auth.othersite.com", othersite.Attributes["openid"])
}

func TestLoadMergesMultipleTenantFiles(t *testing.T) {
	aliasPath, dir := writeConfig(t, urnsYAML, map[string]string{
		"a.yml":     "mysite:\n  domain: mysite.com\n",
		"b.yaml":    "othersite:\n  domain: othersite.com\n  global: true\n",
		"notes.txt": "ignored",
	})

	snap, err := Load(aliasPath, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TenantCount())
}

func TestLoadOpenIDShorthand(t *testing.T) {
	aliasPath, dir := writeConfig(t, urnsYAML, map[string]string{
		"tenants.yml": "legacy:\n  domain: legacy.com\n  global: true\n  openid: https://auth.legacy.com\n",
	})

	snap, err := Load(aliasPath, dir)
	require.NoError(t, err)

	tenant, ok := snap.FindTenant("legacy.com")
	require.True(t, ok)
	assert.Equal(t, "https://auth.legacy.com", tenant.Attributes["openid"])
}

func TestLoadMissingAliasFileYieldsEmptyTable(t *testing.T) {
	aliasPath, dir := writeConfig(t, "", map[string]string{
		"tenants.yml": "bare:\n  domain: bare.com\n  global: true\n",
	})

	snap, err := Load(aliasPath, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Aliases().Len())
}

func TestLoadMissingConfigDirYieldsEmptyRegistry(t *testing.T) {
	aliasPath, dir := writeConfig(t, urnsYAML, nil)

	snap, err := Load(aliasPath, filepath.Join(dir, "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TenantCount())
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		tenants string
		wantErr string
	}{
		{
			name:    "unknown attribute alias",
			tenants: "mysite:\n  domain: mysite.com\n  attributes:\n    pager: \"555\"\n",
			wantErr: "no URN alias entry",
		},
		{
			name:    "unknown user attribute alias",
			tenants: "mysite:\n  domain: mysite.com\n  users:\n    user1:\n      attributes:\n        pager: \"555\"\n",
			wantErr: "no URN alias entry",
		},
		{
			name:    "missing domain",
			tenants: "mysite:\n  global: true\n",
			wantErr: "domain is required",
		},
		{
			name:    "invalid domain",
			tenants: "mysite:\n  domain: \"not a domain\"\n",
			wantErr: "not a valid domain",
		},
		{
			name:    "duplicate domain",
			tenants: "a:\n  domain: mysite.com\nb:\n  domain: mysite.com\n",
			wantErr: "claimed by both",
		},
		{
			name:    "empty attribute value",
			tenants: "mysite:\n  domain: mysite.com\n  attributes:\n    name: \"\"\n",
			wantErr: "empty value",
		},
		{
			name:    "openid shorthand conflict",
			tenants: "mysite:\n  domain: mysite.com\n  openid: https://a\n  attributes:\n    openid: https://b\n",
			wantErr: "openid declared both",
		},
		{
			name:    "empty user local part",
			tenants: "mysite:\n  domain: mysite.com\n  users:\n    \"\": {}\n",
			wantErr: "local part must not be empty",
		},
		{
			name:    "malformed yaml",
			tenants: "mysite: [unclosed\n",
			wantErr: "parse tenant file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aliasPath, dir := writeConfig(t, urnsYAML, map[string]string{"tenants.yml": tt.tenants})
			_, err := Load(aliasPath, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDuplicateTenantNameAcrossFiles(t *testing.T) {
	aliasPath, dir := writeConfig(t, urnsYAML, map[string]string{
		"a.yml": "mysite:\n  domain: mysite.com\n",
		"b.yml": "mysite:\n  domain: elsewhere.com\n",
	})

	_, err := Load(aliasPath, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defined more than once")
}
