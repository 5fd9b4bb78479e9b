package lockout

// DefaultPuzzleFailureLimit is the number of unsolved submissions after which a
// login window stops accepting attempts
const DefaultPuzzleFailureLimit = 3

// PuzzleCounter counts unsolved puzzle submissions within one login window.
// It is never persisted; opening a new window starts a fresh counter.
// A PuzzleCounter is not safe for concurrent use.
type PuzzleCounter struct {
	Limit    int
	failures int
}

// NewPuzzleCounter creates a counter with the given limit, or the default when limit <= 0
func NewPuzzleCounter(limit int) *PuzzleCounter {
	if limit <= 0 {
		limit = DefaultPuzzleFailureLimit
	}
	return &PuzzleCounter{Limit: limit}
}

// Record counts one puzzle failure and returns the new total, capped at Limit
func (c *PuzzleCounter) Record() int {
	if c.failures < c.limit() {
		c.failures++
	}
	return c.failures
}

// SoftLocked reports whether the window has hit its failure limit
func (c *PuzzleCounter) SoftLocked() bool {
	return c.failures >= c.limit()
}

// Failures returns the current count
func (c *PuzzleCounter) Failures() int {
	return c.failures
}

// Reset zeroes the counter
func (c *PuzzleCounter) Reset() {
	c.failures = 0
}

func (c *PuzzleCounter) limit() int {
	if c.Limit <= 0 {
		return DefaultPuzzleFailureLimit
	}
	return c.Limit
}
