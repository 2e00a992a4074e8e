// Package resource parses inbound WebFinger resource identifiers.
package resource

import (
	"errors"
	"net/url"
	"strings"
)

// Sentinel errors for parse failures. The transport layer translates these
// into status codes; the parser never logs or writes responses itself.
var (
	// ErrMalformed means no domain could be extracted from the resource.
	ErrMalformed = errors.New("resource has no extractable domain")
	// ErrUnsupportedScheme means a scheme prefix is present but not recognized.
	ErrUnsupportedScheme = errors.New("unsupported resource scheme")
)

// Identity is the parse result for one resource identifier. It is created
// per request, owned by the request path, and discarded with it.
type Identity struct {
	// Raw is the resource exactly as received; it is echoed back as the
	// document subject.
	Raw string
	// Scheme is the lowercased scheme prefix ("acct", "mailto", "https",
	// "http"), or empty for a bare local@domain form.
	Scheme string
	// LocalPart is the part before the last '@' for account forms. Empty
	// for URL forms.
	LocalPart string
	// Domain is the part after the last '@', or the URL host.
	Domain string
}

// accountSchemes are the address-style schemes this service understands.
var accountSchemes = map[string]bool{
	"acct":   true,
	"mailto": true,
}

// Parse extracts scheme, local part, and domain from a resource identifier.
//
// Accepted forms:
//   - acct:local@domain and mailto:local@domain (split on the last '@')
//   - http(s)://domain/... (domain is the host, without any port)
//   - bare local@domain (treated like acct without the prefix)
//
// Parse is pure: no side effects, and the returned substrings reference the
// input where slicing allows it.
func Parse(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMalformed
	}

	if isURLForm(raw) {
		return parseURL(raw)
	}

	rest := raw
	scheme := ""
	if idx := strings.Index(raw, ":"); idx >= 0 {
		scheme = strings.ToLower(raw[:idx])
		if !accountSchemes[scheme] {
			return Identity{}, ErrUnsupportedScheme
		}
		rest = raw[idx+1:]
	}

	at := strings.LastIndex(rest, "@")
	if at <= 0 || at == len(rest)-1 {
		return Identity{}, ErrMalformed
	}

	return Identity{
		Raw:       raw,
		Scheme:    scheme,
		LocalPart: rest[:at],
		Domain:    rest[at+1:],
	}, nil
}

// isURLForm reports whether the resource carries an authority component
// (scheme://...), which account schemes never do.
func isURLForm(raw string) bool {
	return strings.Contains(raw, "://")
}

func parseURL(raw string) (Identity, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Identity{}, ErrMalformed
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Identity{}, ErrUnsupportedScheme
	}
	host := u.Hostname()
	if host == "" {
		return Identity{}, ErrMalformed
	}
	return Identity{
		Raw:    raw,
		Scheme: scheme,
		Domain: host,
	}, nil
}
