// SPDX-License-Identifier: MPL-2.0

package whitelist

import (
	"maps"
	"slices"
	"strings"
)

// SetupExclusion is required in every whitelist so that setup-only paths of a
// namespace are never materialized.
const SetupExclusion = "!setup/**"

// Set is an unordered set of whitelist entries.
type Set map[string]struct{}

// NewSet creates a Set holding entries.
func NewSet(entries ...string) Set {
	s := make(Set, len(entries))
	for _, e := range entries {
		s.Add(e)
	}
	return s
}

// Add inserts e.
func (s Set) Add(e string) {
	s[e] = struct{}{}
}

// Has reports whether e is in the set.
func (s Set) Has(e string) bool {
	_, ok := s[e]
	return ok
}

// Union returns a new set holding the entries of s and o.
func (s Set) Union(o Set) Set {
	out := maps.Clone(s)
	if out == nil {
		out = make(Set, len(o))
	}
	maps.Copy(out, o)
	return out
}

// Difference returns the entries of s missing from o.
func (s Set) Difference(o Set) Set {
	out := make(Set)
	for e := range s {
		if !o.Has(e) {
			out.Add(e)
		}
	}
	return out
}

// Sorted returns the entries in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Modules returns the bare module entries, sorted.
func (s Set) Modules() []string {
	var out []string
	for _, e := range s.Sorted() {
		if !IsPattern(e) {
			out = append(out, e)
		}
	}
	return out
}

// Patterns returns the "!"-prefixed entries, sorted.
func (s Set) Patterns() []string {
	var out []string
	for _, e := range s.Sorted() {
		if IsPattern(e) {
			out = append(out, e)
		}
	}
	return out
}

// IsPattern reports whether e is a negated glob pattern rather than a module.
func IsPattern(e string) bool {
	return strings.HasPrefix(e, "!")
}

// parse reads one entry per line. Blank lines are ignored.
func parse(data []byte) Set {
	s := make(Set)
	for _, line := range strings.Split(string(data), "\n") {
		if e := strings.TrimSpace(line); e != "" {
			s.Add(e)
		}
	}
	return s
}
