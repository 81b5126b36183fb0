package owner

import (
	"strings"
)

// Resolver maps free-text owner names or emails to tracker handles
type Resolver struct {
	table map[string]string
}

// NewResolver creates a Resolver over a name -> handle table. Keys are
// matched case-insensitively.
func NewResolver(table map[string]string) *Resolver {
	normalized := make(map[string]string, len(table))
	for name, handle := range table {
		normalized[normalize(name)] = handle
	}
	return &Resolver{table: normalized}
}

// Resolve returns the assignees for owner, or nil when the owner is blank.
// Unknown names pass through as their normalized form.
func (r *Resolver) Resolve(owner string) []string {
	key := normalize(owner)
	if key == "" {
		return nil
	}
	handle, ok := r.table[key]
	if !ok {
		handle = key
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil
	}
	return []string{handle}
}

// normalize trims, lower-cases and keeps the local part of an email
func normalize(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(key, "@"); i >= 0 {
		key = key[:i]
	}
	return key
}
