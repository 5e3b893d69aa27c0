// Package access decides which requests may run without a principal and
// which resource mutations a principal may perform.
package access

import (
	"net/http"
	"path"
	"slices"
	"strings"
)

// Requirement is what a route demands from the caller.
type Requirement int

const (
	// Authenticated routes need a valid bearer token.
	Authenticated Requirement = iota
	// Anonymous routes run with or without a principal.
	Anonymous
)

func (r Requirement) String() string {
	if r == Anonymous {
		return "anonymous"
	}
	return "authenticated"
}

// Rule grants Requirement to requests whose method is listed (no methods
// means any method) and whose path matches one of Patterns.
//
// Patterns use Ant syntax: "*" matches exactly one path segment (and can be
// mixed with literals inside a segment), "**" matches zero or more segments.
type Rule struct {
	Methods     []string
	Patterns    []string
	Requirement Requirement
}

func (r Rule) matches(method, urlPath string) bool {
	if len(r.Methods) > 0 && !slices.Contains(r.Methods, method) {
		return false
	}
	for _, p := range r.Patterns {
		if Match(p, urlPath) {
			return true
		}
	}
	return false
}

// Policy is an ordered rule table; the first matching rule wins and
// Fallback applies when none does.
type Policy struct {
	rules    []Rule
	fallback Requirement
}

func NewPolicy(fallback Requirement, rules ...Rule) *Policy {
	return &Policy{rules: rules, fallback: fallback}
}

// DefaultPolicy is the route table of the book review API.
func DefaultPolicy() *Policy {
	return NewPolicy(Authenticated,
		Rule{Patterns: []string{"/authenticate", "/register"}, Requirement: Anonymous},
		Rule{Methods: []string{http.MethodGet}, Patterns: []string{"/reviews/**", "/replies/**"}, Requirement: Anonymous},
		Rule{Methods: []string{http.MethodPut}, Patterns: []string{"/reviews/*/like"}, Requirement: Anonymous},
		Rule{Methods: []string{http.MethodPost, http.MethodPut, http.MethodDelete}, Patterns: []string{"/reviews/**", "/replies/**"}, Requirement: Authenticated},
		Rule{Methods: []string{http.MethodOptions}, Patterns: []string{"/**"}, Requirement: Anonymous},
	)
}

// Evaluate returns the requirement for a request.
func (p *Policy) Evaluate(method, urlPath string) Requirement {
	for _, r := range p.rules {
		if r.matches(method, urlPath) {
			return r.Requirement
		}
	}
	return p.fallback
}

// Match reports whether urlPath matches the Ant-style pattern. Empty
// segments are ignored, so "/reviews/" and "/reviews" are the same path.
func Match(pattern, urlPath string) bool {
	return matchSegments(segments(pattern), segments(urlPath))
}

func segments(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func matchSegments(pattern, segs []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, err := path.Match(pattern[0], segs[0]); err != nil || !ok {
			return false
		}
		pattern, segs = pattern[1:], segs[1:]
	}
	return len(segs) == 0
}
