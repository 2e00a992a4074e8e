// Package alias maps short configuration-facing attribute names to the
// canonical URNs used in discovery responses.
package alias

// Table is an immutable alias -> URN mapping. It is built once by the
// configuration loader and shared read-only across all requests; nothing
// mutates it after construction.
type Table struct {
	urns map[string]string
}

// NewTable builds a Table from the given mapping. The input map is copied so
// later mutation by the caller cannot leak into the shared table.
func NewTable(urns map[string]string) *Table {
	copied := make(map[string]string, len(urns))
	for name, urn := range urns {
		copied[name] = urn
	}
	return &Table{urns: copied}
}

// Resolve returns the canonical URN for an alias name.
func (t *Table) Resolve(name string) (string, bool) {
	urn, ok := t.urns[name]
	return urn, ok
}

// Len reports the number of aliases in the table.
func (t *Table) Len() int {
	return len(t.urns)
}
