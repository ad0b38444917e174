package cache

import "time"

// Tiered checks each tier in order and writes through to all of them.
// A hit in a slower tier is copied into the faster tiers above it.
type Tiered struct {
	tiers []Cache
}

// NewTiered stacks tiers fastest first
func NewTiered(tiers ...Cache) *Tiered {
	return &Tiered{tiers: tiers}
}

// Get returns the first hit
func (t *Tiered) Get(key string) ([]byte, bool) {
	for i, c := range t.tiers {
		val, ok := c.Get(key)
		if !ok {
			continue
		}
		for _, faster := range t.tiers[:i] {
			_ = faster.Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

// Set stores value in every tier and returns the first failure
func (t *Tiered) Set(key string, value []byte, ttl time.Duration) error {
	var first error
	for _, c := range t.tiers {
		if err := c.Set(key, value, ttl); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Delete removes key from every tier
func (t *Tiered) Delete(key string) error {
	var first error
	for _, c := range t.tiers {
		if err := c.Delete(key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Clear empties every tier
func (t *Tiered) Clear() error {
	var first error
	for _, c := range t.tiers {
		if err := c.Clear(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
