// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package purpose

import "sync"

// Cache memoizes parsed filters. A benchmark run has few distinct
// filters and many publications, so every metric worker shares one
// Cache. Safe for concurrent use.
type Cache struct {
	filters sync.Map // string → cacheEntry
}

type cacheEntry struct {
	filter Filter
	err    error
}

// Filter returns the parsed form of filter, parsing it on first use.
// Parse errors are cached too.
func (c *Cache) Filter(filter string) (Filter, error) {
	if value, ok := c.filters.Load(filter); ok {
		entry := value.(cacheEntry)
		return entry.filter, entry.err
	}
	parsed, err := Parse(filter)
	value, _ := c.filters.LoadOrStore(filter, cacheEntry{filter: parsed, err: err})
	entry := value.(cacheEntry)
	return entry.filter, entry.err
}

// Describes is [Describes] through the cache.
func (c *Cache) Describes(filter, purpose string) (bool, error) {
	parsed, err := c.Filter(filter)
	if err != nil {
		return false, err
	}
	if err := ValidatePurpose(purpose); err != nil {
		return false, err
	}
	return parsed.Describes(purpose), nil
}
