package session

import "strings"

// Resolver normalizes free-text host names to their canonical spelling.
// The alias table is configuration data: keys are matched after trimming
// and lowercasing, values keep their canonical case.
type Resolver struct {
	aliases map[string]string
}

// NewResolver builds a resolver from an alias table. Keys are canonicalised
// to their trimmed, lowercased form so the table itself may be entered as
// sloppily as the host names it corrects.
func NewResolver(table map[string]string) *Resolver {
	aliases := make(map[string]string, len(table))
	for k, v := range table {
		aliases[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &Resolver{aliases: aliases}
}

// Normalize maps a raw host name to its canonical identity. Unknown names
// pass through trimmed with their case preserved. Normalize is idempotent.
func (r *Resolver) Normalize(name string) string {
	if name == "" {
		return name
	}
	trimmed := strings.TrimSpace(name)
	if canonical, ok := r.aliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}
