// Package router maps location fragments ("#/stories/42") to page factories.
//
// The table is built once at startup and never mutated. A pattern has
// literal segments and at most one ":name" parameter segment. Patterns must
// be disjoint by shape, so at most one of them matches any path and no
// precedence rule is needed.
package router

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ActiveRoute is the result of resolving one location.
type ActiveRoute struct {
	Path    string            // normalized concrete path, e.g. "/stories/42"
	Pattern string            // matched pattern, e.g. "/stories/:id"
	Params  map[string]string // captured parameters, e.g. {"id": "42"}
}

// Param returns a captured parameter or "".
func (r ActiveRoute) Param(name string) string {
	return r.Params[name]
}

// Route binds a pattern to a factory producing a fresh page per navigation.
type Route[P any] struct {
	Pattern string
	Factory func(ActiveRoute) P
}

type compiled[P any] struct {
	route    Route[P]
	segments []string
	param    int // index of the parameter segment, -1 if none
}

// Table is an immutable route table.
type Table[P any] struct {
	routes []compiled[P]
}

// NewTable validates and compiles routes.
func NewTable[P any](routes ...Route[P]) (*Table[P], error) {
	t := &Table[P]{}
	for _, r := range routes {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("route %q: pattern must start with /", r.Pattern)
		}
		if r.Factory == nil {
			return nil, fmt.Errorf("route %q: nil factory", r.Pattern)
		}
		c := compiled[P]{route: r, segments: Split(r.Pattern), param: -1}
		for i, seg := range c.segments {
			if !strings.HasPrefix(seg, ":") {
				continue
			}
			if len(seg) == 1 {
				return nil, fmt.Errorf("route %q: unnamed parameter", r.Pattern)
			}
			if c.param >= 0 {
				return nil, fmt.Errorf("route %q: more than one parameter segment", r.Pattern)
			}
			c.param = i
		}
		for _, other := range t.routes {
			if overlaps(c, other) {
				return nil, fmt.Errorf("route %q overlaps %q", r.Pattern, other.route.Pattern)
			}
		}
		t.routes = append(t.routes, c)
	}
	return t, nil
}

// MustTable is NewTable that panics on an invalid table.
func MustTable[P any](routes ...Route[P]) *Table[P] {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

func overlaps[P any](a, b compiled[P]) bool {
	if len(a.segments) != len(b.segments) {
		return false
	}
	for i := range a.segments {
		if i == a.param || i == b.param {
			continue
		}
		if a.segments[i] != b.segments[i] {
			return false
		}
	}
	return true
}

// Lookup matches a normalized path. Segment counts must be equal and every
// literal segment must equal its decoded counterpart. Segments are split
// before decoding, so an escaped "/" stays inside its parameter.
func (t *Table[P]) Lookup(path string) (ActiveRoute, Route[P], bool) {
	segs := Split(path)
	decoded := make([]string, len(segs))
	for i, s := range segs {
		decoded[i] = unescape(s)
	}
	for _, c := range t.routes {
		if len(c.segments) != len(segs) {
			continue
		}
		match := true
		for i, seg := range c.segments {
			if i != c.param && seg != decoded[i] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		ar := ActiveRoute{Path: Join(segs), Pattern: c.route.Pattern, Params: map[string]string{}}
		if c.param >= 0 {
			ar.Params[c.segments[c.param][1:]] = decoded[c.param]
		}
		return ar, c.route, true
	}
	return ActiveRoute{Path: Join(segs), Params: map[string]string{}}, Route[P]{}, false
}

func unescape(seg string) string {
	if dec, err := url.PathUnescape(seg); err == nil {
		return dec
	}
	return seg
}

// Patterns returns the registered patterns, sorted.
func (t *Table[P]) Patterns() []string {
	out := make([]string, 0, len(t.routes))
	for _, c := range t.routes {
		out = append(out, c.route.Pattern)
	}
	sort.Strings(out)
	return out
}

// Resolve parses a location fragment and looks it up.
func (t *Table[P]) Resolve(fragment string) (ActiveRoute, Route[P], bool) {
	return t.Lookup(ParseHash(fragment))
}

// ParseHash turns a fragment ("#/stories/42/", "stories/42", "") into a
// normalized path ("/stories/42"). Empty input resolves to "/". Percent
// escapes are kept; Lookup decodes them per segment.
func ParseHash(fragment string) string {
	f := strings.TrimSpace(fragment)
	f = strings.TrimPrefix(f, "#")
	if i := strings.IndexAny(f, "?"); i >= 0 {
		f = f[:i]
	}
	return Join(Split(f))
}

// Split returns the non-empty segments of a path.
func Split(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Join is the inverse of Split; no segments yields "/".
func Join(segs []string) string {
	return "/" + strings.Join(segs, "/")
}

// Hash formats a path as a location fragment.
func Hash(path string) string {
	return "#" + ParseHash(path)
}
