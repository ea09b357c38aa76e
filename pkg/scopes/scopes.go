package scopes

import (
	"slices"
	"strings"
)

const (
	// Wildcard matches every scope.
	Wildcard = "*"
	// Delimiter separates scope segments, e.g. "file.share".
	Delimiter = "."
)

// Matches reports whether scope is granted by pattern.
// "file.share" is granted by "file.share", "file.*" and "*".
func Matches(scope, pattern string) bool {
	if scope == pattern || pattern == Wildcard {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, Delimiter+Wildcard); ok {
		return strings.HasPrefix(scope, prefix+Delimiter)
	}
	return false
}

// Has reports whether any of granted matches scope.
func Has(granted []string, scope string) bool {
	return slices.ContainsFunc(granted, func(pattern string) bool {
		return Matches(scope, pattern)
	})
}

// HasAll reports whether every required scope is granted.
func HasAll(granted, required []string) bool {
	for _, r := range required {
		if !Has(granted, r) {
			return false
		}
	}
	return true
}

// Normalize trims, drops empties, sorts and deduplicates.
func Normalize(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Valid reports whether s is a well-formed scope: non-empty dot-separated
// segments where only the last may be the wildcard.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	parts := strings.Split(s, Delimiter)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t") {
			return false
		}
		if strings.Contains(p, Wildcard) && (p != Wildcard || i != len(parts)-1) {
			return false
		}
	}
	return true
}
