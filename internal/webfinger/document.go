// Package webfinger renders resolved identities into RFC 7033 discovery
// documents (JRD).
package webfinger

// Link is one structured entry of the document's links list.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href,omitempty"`
	Type string `json:"type,omitempty"`
}

// Document is the JSON Resource Descriptor returned for a successful
// resolution. Empty collections are omitted from the wire form.
type Document struct {
	Subject    string             `json:"subject"`
	Aliases    []string           `json:"aliases,omitempty"`
	Properties map[string]*string `json:"properties,omitempty"`
	Links      []Link             `json:"links,omitempty"`
}

// ContentType is the media type for JRD responses.
const ContentType = "application/jrd+json"
