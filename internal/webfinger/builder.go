package webfinger

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"webfingerd/internal/resolve"
)

// typeSuffix optionally trails a link value: "https://x/pic.png;type=image/png".
const typeSuffix = ";type="

// Render partitions the resolved attributes into properties and links and
// assembles the discovery document.
//
// Classification follows the attribute value: a value that parses as an
// absolute URL becomes a link with rel set to the resolved URN and href set
// to the value; anything else becomes a property keyed by the URN. The
// attribute order produced by the engine is already deterministic, so the
// rendered document is byte-identical for identical input.
func Render(res *resolve.Resolved) Document {
	doc := Document{Subject: res.Subject}
	if len(res.Aliases) > 0 {
		doc.Aliases = res.Aliases
	}

	for _, attr := range res.Attributes {
		href, mediaType := splitMediaType(attr.Value)
		if govalidator.IsRequestURL(href) {
			doc.Links = append(doc.Links, Link{Rel: attr.Rel, Href: href, Type: mediaType})
			continue
		}
		if doc.Properties == nil {
			doc.Properties = make(map[string]*string)
		}
		value := attr.Value
		doc.Properties[attr.Rel] = &value
	}
	return doc
}

// splitMediaType peels an optional ";type=<mime>" suffix off a link value.
// Values without the suffix pass through untouched.
func splitMediaType(value string) (href, mediaType string) {
	idx := strings.LastIndex(value, typeSuffix)
	if idx < 0 {
		return value, ""
	}
	return value[:idx], value[idx+len(typeSuffix):]
}
