package deserializer

import (
	"fmt"
	"strings"
)

// AnnotationFilter decides which instance annotations are materialized.
// Patterns are "*", "NS.*" or an exact term; a leading "-" excludes.
// Exclusions win over inclusions. A nil filter matches nothing.
type AnnotationFilter struct {
	include []string
	exclude []string
	all     bool
}

// NewAnnotationFilter parses the given patterns.
func NewAnnotationFilter(patterns ...string) (*AnnotationFilter, error) {
	f := &AnnotationFilter{}
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		exclude := strings.HasPrefix(pattern, "-")
		pattern = strings.TrimPrefix(pattern, "-")
		if err := validatePattern(pattern); err != nil {
			return nil, fmt.Errorf("annotation filter %q: %w", raw, err)
		}
		switch {
		case exclude:
			f.exclude = append(f.exclude, pattern)
		case pattern == "*":
			f.all = true
		default:
			f.include = append(f.include, pattern)
		}
	}
	return f, nil
}

func validatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty pattern")
	}
	if pattern == "*" {
		return nil
	}
	body := strings.TrimSuffix(pattern, ".*")
	if body == "" || strings.ContainsAny(body, "* \t") {
		return fmt.Errorf("wildcard allowed only as \"*\" or a \".*\" suffix")
	}
	if strings.HasPrefix(body, ".") || strings.HasSuffix(body, ".") {
		return fmt.Errorf("invalid namespace")
	}
	return nil
}

// Matches reports whether term should be materialized.
func (f *AnnotationFilter) Matches(term string) bool {
	if f == nil || term == "" {
		return false
	}
	for _, p := range f.exclude {
		if matchPattern(p, term) {
			return false
		}
	}
	if f.all {
		return true
	}
	for _, p := range f.include {
		if matchPattern(p, term) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, term string) bool {
	if pattern == "*" {
		return true
	}
	if ns, ok := strings.CutSuffix(pattern, ".*"); ok {
		return strings.HasPrefix(term, ns+".") && len(term) > len(ns)+1
	}
	return pattern == term
}
