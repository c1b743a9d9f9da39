// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package purpose

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// AllPurposes is the literal segment benchmark clients use for "every
// purpose". It receives no special treatment during matching.
const AllPurposes = "*"

// ErrMalformed is wrapped by every syntax error returned from this
// package.
var ErrMalformed = errors.New("malformed purpose expression")

// Filter is a parsed purpose filter: one list of alternatives per
// segment.
type Filter struct {
	raw      string
	segments [][]string
}

// Parse parses a purpose filter. Segments are separated by "/". A
// segment starting with "{" must end with "}" and hold one or more
// non-empty comma-separated alternatives. Braces or commas anywhere
// else, and empty segments, are errors.
func Parse(filter string) (Filter, error) {
	if filter == "" {
		return Filter{}, fmt.Errorf("%w: empty filter", ErrMalformed)
	}

	parts := strings.Split(filter, "/")
	segments := make([][]string, 0, len(parts))
	for index, part := range parts {
		alternatives, err := parseSegment(part)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %q segment %d: %v", ErrMalformed, filter, index+1, err)
		}
		segments = append(segments, alternatives)
	}
	return Filter{raw: filter, segments: segments}, nil
}

func parseSegment(segment string) ([]string, error) {
	if segment == "" {
		return nil, errors.New("empty segment")
	}
	if !strings.HasPrefix(segment, "{") {
		if strings.ContainsAny(segment, "{},") {
			return nil, errors.New("alternation must span the whole segment")
		}
		return []string{segment}, nil
	}
	if !strings.HasSuffix(segment, "}") || len(segment) < 2 {
		return nil, errors.New("unterminated alternation")
	}
	body := segment[1 : len(segment)-1]
	if strings.ContainsAny(body, "{}") {
		return nil, errors.New("nested braces")
	}
	alternatives := strings.Split(body, ",")
	for _, alternative := range alternatives {
		if alternative == "" {
			return nil, errors.New("empty alternative")
		}
	}
	slices.Sort(alternatives)
	return slices.Compact(alternatives), nil
}

// String returns the filter as it was written.
func (f Filter) String() string {
	return f.raw
}

// Size returns the number of purposes the filter describes, without
// materializing them.
func (f Filter) Size() int {
	if len(f.segments) == 0 {
		return 0
	}
	size := 1
	for _, alternatives := range f.segments {
		size *= len(alternatives)
	}
	return size
}

// Expand returns every purpose the filter describes, sorted.
func (f Filter) Expand() []string {
	if len(f.segments) == 0 {
		return nil
	}
	purposes := []string{""}
	for index, alternatives := range f.segments {
		next := make([]string, 0, len(purposes)*len(alternatives))
		for _, prefix := range purposes {
			for _, alternative := range alternatives {
				if index == 0 {
					next = append(next, alternative)
				} else {
					next = append(next, prefix+"/"+alternative)
				}
			}
		}
		purposes = next
	}
	slices.Sort(purposes)
	return purposes
}

// Describes reports whether purpose is one of the purposes the filter
// expands to. It walks the segments instead of expanding, so it is
// cheap for wide filters.
func (f Filter) Describes(purpose string) bool {
	parts := strings.Split(purpose, "/")
	if len(parts) != len(f.segments) {
		return false
	}
	for index, part := range parts {
		if _, found := slices.BinarySearch(f.segments[index], part); !found {
			return false
		}
	}
	return true
}

// Describes parses filter and reports whether it describes purpose.
// The purpose itself is validated with [ValidatePurpose].
func Describes(filter, purpose string) (bool, error) {
	parsed, err := Parse(filter)
	if err != nil {
		return false, err
	}
	if err := ValidatePurpose(purpose); err != nil {
		return false, err
	}
	return parsed.Describes(purpose), nil
}

// ValidatePurpose checks that a publication purpose is a concrete path:
// non-empty segments with no alternation syntax.
func ValidatePurpose(purpose string) error {
	if purpose == "" {
		return fmt.Errorf("%w: empty purpose", ErrMalformed)
	}
	if strings.ContainsAny(purpose, "{},") {
		return fmt.Errorf("%w: purpose %q contains alternation syntax", ErrMalformed, purpose)
	}
	for _, part := range strings.Split(purpose, "/") {
		if part == "" {
			return fmt.Errorf("%w: purpose %q has an empty segment", ErrMalformed, purpose)
		}
	}
	return nil
}
