// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package purpose

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{"billing/auto", []string{"billing/auto"}},
		{"{billing,ads}/{auto,profiling}", []string{"ads/auto", "ads/profiling", "billing/auto", "billing/profiling"}},
		{"{billing,ads}/auto", []string{"ads/auto", "billing/auto"}},
		{"billing", []string{"billing"}},
		{"{a,a,b}", []string{"a", "b"}},
		{"*", []string{"*"}},
		{"x/{*,y}", []string{"x/*", "x/y"}},
	}
	for _, test := range tests {
		filter, err := Parse(test.filter)
		if err != nil {
			t.Errorf("Parse(%q): %v", test.filter, err)
			continue
		}
		if got := filter.Expand(); !slices.Equal(got, test.want) {
			t.Errorf("Expand(%q) = %v, want %v", test.filter, got, test.want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, filter := range []string{
		"",
		"billing//auto",
		"/billing",
		"{billing,ads",
		"billing,ads",
		"pre{a,b}",
		"{a,}",
		"{}",
		"{a,{b}}",
		"a}",
	} {
		_, err := Parse(filter)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error", filter)
			continue
		}
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) error %v does not wrap ErrMalformed", filter, err)
		}
	}
}

func TestDescribesMatchesExpansionMembership(t *testing.T) {
	filters := []string{
		"{billing,ads}/auto",
		"{billing,ads}/{auto,profiling}",
		"billing",
		"*",
		"a/{b,c}/d",
	}
	purposes := []string{
		"billing/auto", "tracking/auto", "ads/profiling", "billing",
		"billing/auto/x", "*", "a/c/d", "a/b", "ads",
	}
	for _, filter := range filters {
		parsed, err := Parse(filter)
		if err != nil {
			t.Fatalf("Parse(%q): %v", filter, err)
		}
		expansion := parsed.Expand()
		for _, purpose := range purposes {
			got, err := Describes(filter, purpose)
			if err != nil {
				t.Fatalf("Describes(%q, %q): %v", filter, purpose, err)
			}
			want := slices.Contains(expansion, purpose)
			if got != want {
				t.Errorf("Describes(%q, %q) = %v, want %v", filter, purpose, got, want)
			}
		}
	}
}

func TestDescribesExamples(t *testing.T) {
	if ok, _ := Describes("{billing,ads}/auto", "billing/auto"); !ok {
		t.Error("{billing,ads}/auto should describe billing/auto")
	}
	if ok, _ := Describes("{billing,ads}/auto", "tracking/auto"); ok {
		t.Error("{billing,ads}/auto should not describe tracking/auto")
	}
	// Prefixes are not hierarchical matches.
	if ok, _ := Describes("billing", "billing/auto"); ok {
		t.Error("billing should not describe billing/auto")
	}
}

func TestAllPurposesIsLiteral(t *testing.T) {
	ok, err := Describes(AllPurposes, "billing")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("the all-purposes token matched a concrete purpose")
	}
	ok, err = Describes(AllPurposes, AllPurposes)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("the all-purposes token did not match itself")
	}
}

func TestDescribesRejectsMalformedPurpose(t *testing.T) {
	for _, purpose := range []string{"", "{a,b}", "a//b"} {
		if _, err := Describes("a", purpose); !errors.Is(err, ErrMalformed) {
			t.Errorf("Describes(a, %q) error = %v, want ErrMalformed", purpose, err)
		}
	}
}

func TestFilterSize(t *testing.T) {
	filter, err := Parse("{a,b,c}/{d,e}/f")
	if err != nil {
		t.Fatal(err)
	}
	if got := filter.Size(); got != 6 {
		t.Errorf("Size() = %d, want 6", got)
	}
	if got := len(filter.Expand()); got != filter.Size() {
		t.Errorf("len(Expand()) = %d, Size() = %d", got, filter.Size())
	}
}

func TestCacheConcurrentUse(t *testing.T) {
	var cache Cache
	var group sync.WaitGroup
	for range 16 {
		group.Add(1)
		go func() {
			defer group.Done()
			for range 100 {
				ok, err := cache.Describes("{billing,ads}/auto", "ads/auto")
				if err != nil || !ok {
					t.Errorf("cache.Describes = %v, %v", ok, err)
					return
				}
				if _, err := cache.Filter("{broken"); err == nil {
					t.Error("cached malformed filter parsed without error")
					return
				}
			}
		}()
	}
	group.Wait()
}
