// Package model defines the core domain models used throughout the application.
package model

import "strings"

// PathSeparator joins taxonomy labels in the canonical string form.
const PathSeparator = "/"

// Path is an ordered list of taxonomy labels from root to leaf.
type Path []string

// ParsePath splits a separator-joined string into a Path.
// Empty segments are dropped so "/AI//NLP/" parses the same as "AI/NLP".
func ParsePath(s string) Path {
	parts := strings.Split(s, PathSeparator)
	path := make(Path, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			path = append(path, p)
		}
	}
	return path
}

// String renders the path in its canonical separator-joined form.
func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Equal reports whether two paths have identical labels in identical order.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// CommonPrefixLen returns the number of leading labels shared with other.
func (p Path) CommonPrefixLen(other Path) int {
	n := len(p)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if p[i] != other[i] {
			return i
		}
	}
	return n
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// UncategorizedPath is the fixed path used when no classification source
// can produce a candidate (empty taxonomy, total provider failure).
func UncategorizedPath() Path {
	return Path{"Uncategorized"}
}
