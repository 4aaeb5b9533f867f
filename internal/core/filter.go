package core

import "strings"

// ApplyFilter computes a derived, filtered view of the supplied companies.
// It is a pure function recomputed on every call; present fields combine with
// logical AND and an empty spec returns the input unchanged in order.
func ApplyFilter(companies []Company, spec FilterSpec) []Company {
	if spec.Empty() {
		out := make([]Company, len(companies))
		copy(out, companies)
		return out
	}
	out := make([]Company, 0, len(companies))
	for _, c := range companies {
		if matchesFilter(c, spec) {
			out = append(out, c)
		}
	}
	return out
}

func matchesFilter(c Company, spec FilterSpec) bool {
	if spec.Status != nil && c.CurrentStatus != *spec.Status {
		return false
	}
	if spec.Phase != nil && c.Phase != *spec.Phase {
		return false
	}
	if spec.Search != "" && !matchesSearch(c, spec.Search) {
		return false
	}
	return true
}

// matchesSearch performs a case-insensitive substring match against name,
// code, and contact person. Absent optional fields do not match.
func matchesSearch(c Company, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	if c.Code != nil && strings.Contains(strings.ToLower(*c.Code), q) {
		return true
	}
	if c.ContactPerson != nil && strings.Contains(strings.ToLower(*c.ContactPerson), q) {
		return true
	}
	return false
}
