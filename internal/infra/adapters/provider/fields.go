package provider

import (
	"strings"
)

// probe walks a dotted path through nested JSON objects and returns the
// value as a trimmed string. Numeric values are not coerced; webhook
// identity fields are strings on every platform observed.
func probe(doc map[string]any, path string) (string, bool) {
	cur := any(doc)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = m[part]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// firstOf applies an ordered list of extraction rules and returns the
// first hit. The order is part of the provider's contract.
func firstOf(doc map[string]any, paths ...string) string {
	for _, p := range paths {
		if v, ok := probe(doc, p); ok {
			return v
		}
	}
	return ""
}
