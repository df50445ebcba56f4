package utils

import "strings"

// LabelSet trims, drops blanks and collapses duplicates, keeping first-seen
// order. It never returns nil.
func LabelSet(values ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, vs := range values {
		for _, v := range vs {
			t := strings.TrimSpace(v)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
