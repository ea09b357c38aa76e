// Package cache provides an in-process LRU cache with optional expiry.
// The owner-name resolver uses it to avoid repeating user lookups while
// rendering file lists.
package cache
