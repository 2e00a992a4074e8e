package webfinger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webfingerd/internal/resolve"
)

func TestRenderPartitionsPropertiesAndLinks(t *testing.T) {
	res := &resolve.Resolved{
		Subject: "acct:user1@mysite.com",
		Attributes: []resolve.Attribute{
			{Name: "avatar", Rel: "http://webfinger.net/rel/avatar", Value: "https://mysite.com/user1-pic"},
			{Name: "name", Rel: "http://schema.org/name", Value: "First User"},
			{Name: "openid", Rel: "http://openid.net/specs/connect/1.0/issuer", Value: "https://auth.mysite.com"},
		},
	}

	doc := Render(res)

	assert.Equal(t, "acct:user1@mysite.com", doc.Subject)
	assert.Empty(t, doc.Aliases)

	require.Len(t, doc.Properties, 1)
	require.NotNil(t, doc.Properties["http://schema.org/name"])
	assert.Equal(t, "First User", *doc.Properties["http://schema.org/name"])

	assert.Equal(t, []Link{
		{Rel: "http://webfinger.net/rel/avatar", Href: "https://mysite.com/user1-pic"},
		{Rel: "http://openid.net/specs/connect/1.0/issuer", Href: "https://auth.mysite.com"},
	}, doc.Links)
}

func TestRenderSplitsMediaTypeSuffix(t *testing.T) {
	res := &resolve.Resolved{
		Subject: "acct:user1@mysite.com",
		Attributes: []resolve.Attribute{
			{Name: "avatar", Rel: "http://webfinger.net/rel/avatar", Value: "https://mysite.com/user1-pic.png;type=image/png"},
		},
	}

	doc := Render(res)

	assert.Equal(t, []Link{
		{
			Rel:  "http://webfinger.net/rel/avatar",
			Href: "https://mysite.com/user1-pic.png",
			Type: "image/png",
		},
	}, doc.Links)
}

func TestRenderPassesAliasesThrough(t *testing.T) {
	res := &resolve.Resolved{
		Subject: "acct:user1@mysite.com",
		Aliases: []string{"https://mysite.com/profiles", "acct:first@mysite.com"},
	}

	doc := Render(res)
	assert.Equal(t, res.Aliases, doc.Aliases)
}

func TestRenderOmitsEmptyCollections(t *testing.T) {
	doc := Render(&resolve.Resolved{Subject: "acct:anyone@othersite.com"})

	body, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject":"acct:anyone@othersite.com"}`, string(body))
}

func TestRenderIsDeterministic(t *testing.T) {
	res := &resolve.Resolved{
		Subject: "acct:user1@mysite.com",
		Aliases: []string{"acct:first@mysite.com"},
		Attributes: []resolve.Attribute{
			{Name: "avatar", Rel: "http://webfinger.net/rel/avatar", Value: "https://mysite.com/user1-pic"},
			{Name: "name", Rel: "http://schema.org/name", Value: "First User"},
			{Name: "nickname", Rel: "http://schema.org/alternateName", Value: "one"},
			{Name: "openid", Rel: "http://openid.net/specs/connect/1.0/issuer", Value: "https://auth.mysite.com"},
		},
	}

	first, err := json.Marshal(Render(res))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		next, err := json.Marshal(Render(res))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(next))
	}
}
