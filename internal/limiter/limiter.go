// Package limiter computes bounded windows over lists: capping how many
// suggestions are kept and which slice of them is visible in the dropdown.
package limiter

import "fmt"

// Config holds the windowing parameters.
type Config struct {
	Limit  int // Show only this many items (0 = unlimited)
	Offset int // Skip the first N items (0 = no skip)
}

// Validate rejects negative values.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", c.Offset)
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0
}

// Range returns the half-open [start, end) window for a list of length items.
func (c Config) Range(length int) (int, int) {
	start := c.Offset
	if start < 0 {
		start = 0
	}
	if start > length {
		start = length
	}
	end := length
	if c.Limit > 0 && start+c.Limit < length {
		end = start + c.Limit
	}
	return start, end
}

// Apply returns the window of items selected by c.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Range(len(items))
	return items[start:end]
}

// Follow returns the scroll offset that keeps focus visible in a window of
// size rows over length items, moving the window as little as possible.
// A negative focus keeps the current offset (clamped).
func Follow(offset, focus, size, length int) int {
	if size <= 0 || length <= size {
		return 0
	}
	maxOffset := length - size
	if focus >= 0 && focus < length {
		switch {
		case focus < offset:
			offset = focus
		case focus >= offset+size:
			offset = focus - size + 1
		}
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
