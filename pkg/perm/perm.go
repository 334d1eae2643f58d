package perm

import (
	"slices"
	"sort"
	"strings"
)

const (
	// Wildcard grants every permission. It is reserved for system roles.
	Wildcard = "*"

	// Delimiter separates permission segments (e.g., "accounting.vouchers.approve").
	Delimiter = "."
)

// Matches reports whether a held grant satisfies a required permission.
//
// Matching rules, in order:
//   - the global wildcard "*" satisfies anything
//   - an exact match satisfies
//   - a coarser grant satisfies all of its finer children: holding
//     "accounting.vouchers" satisfies "accounting.vouchers.approve"
//
// Matching is case-sensitive and segment-exact: "accounting.vouchers" does
// NOT satisfy "accounting.vouchersx".
func Matches(grant, required string) bool {
	if grant == Wildcard || grant == required {
		return true
	}
	return strings.HasPrefix(required, grant+Delimiter)
}

// Has reports whether any grant in the set satisfies the required permission.
func Has(grants []string, required string) bool {
	for _, g := range grants {
		if Matches(g, required) {
			return true
		}
	}
	return false
}

// HasAll reports whether every required permission is satisfied by the set.
// An empty required list is trivially satisfied.
func HasAll(grants, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(grants) == 0 {
		return false
	}
	if slices.Contains(grants, Wildcard) {
		return true
	}
	for _, req := range required {
		if !Has(grants, req) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one required permission is satisfied.
// An empty required list is trivially satisfied.
func HasAny(grants, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(grants) == 0 {
		return false
	}
	if slices.Contains(grants, Wildcard) {
		return true
	}
	for _, req := range required {
		if Has(grants, req) {
			return true
		}
	}
	return false
}

// Normalize removes duplicates and empty entries and sorts the result.
// Returns nil for empty input so callers can compare against nil caches.
func Normalize(grants []string) []string {
	if len(grants) == 0 {
		return nil
	}

	unique := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		if g = strings.TrimSpace(g); g != "" {
			unique[g] = struct{}{}
		}
	}
	if len(unique) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(unique))
	for g := range unique {
		normalized = append(normalized, g)
	}
	sort.Strings(normalized)

	return normalized
}

// Equal reports whether two permission sets contain the same grants,
// regardless of order and duplicates.
func Equal(a, b []string) bool {
	return slices.Equal(Normalize(a), Normalize(b))
}
