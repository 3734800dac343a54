package linebuf

// ClampedIndex is a value carrying a current position, an upper bound, and
// whether that bound is exclusive. Arithmetic saturates at both ends; the
// position is always re-clamped after Max changes.
//
// Grounded in the cursor/selection bookkeeping of
// internal/ui/shared/vimtextarea (cursorCol as a grapheme index clamped to
// GraphemeCount(line)-1 in Normal mode, GraphemeCount(line) in Insert mode)
// generalized into its own value type per spec.md §3.
type ClampedIndex struct {
	current   int
	max       int
	exclusive bool
}

// NewClampedIndex creates a ClampedIndex at 0 with the given bound.
func NewClampedIndex(max int, exclusive bool) ClampedIndex {
	c := ClampedIndex{max: max, exclusive: exclusive}
	c.clamp()
	return c
}

// Get returns the current value.
func (c ClampedIndex) Get() int { return c.current }

// Max returns the configured maximum.
func (c ClampedIndex) Max() int { return c.max }

// UpperBound returns the highest value Get() may return: max, or max-1 when
// exclusive.
func (c ClampedIndex) UpperBound() int {
	if c.exclusive {
		return maxInt(c.max-1, 0)
	}
	return c.max
}

func (c *ClampedIndex) clamp() {
	ub := c.UpperBound()
	if c.current > ub {
		c.current = ub
	}
	if c.current < 0 {
		c.current = 0
	}
}

// Set moves to an absolute value, clamping it to bounds. Returns the
// modified copy.
func (c ClampedIndex) Set(v int) ClampedIndex {
	c.current = v
	c.clamp()
	return c
}

// Add increments by delta, clamping. Returns the modified copy.
func (c ClampedIndex) Add(delta int) ClampedIndex {
	return c.Set(c.current + delta)
}

// Sub decrements by delta, clamping. Returns the modified copy.
func (c ClampedIndex) Sub(delta int) ClampedIndex {
	return c.Set(c.current - delta)
}

// Increment moves forward by one, clamping. Returns the modified copy.
func (c ClampedIndex) Increment() ClampedIndex { return c.Add(1) }

// Decrement moves backward by one, clamping. Returns the modified copy.
func (c ClampedIndex) Decrement() ClampedIndex { return c.Sub(1) }

// SetMax changes the bound and reclamps the current value. Returns the
// modified copy.
func (c ClampedIndex) SetMax(max int) ClampedIndex {
	c.max = max
	c.clamp()
	return c
}

// SetExclusive changes exclusivity and reclamps. Returns the modified copy.
func (c ClampedIndex) SetExclusive(exclusive bool) ClampedIndex {
	c.exclusive = exclusive
	c.clamp()
	return c
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
