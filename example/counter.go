package example

//starbind:compile Counter, fields, methods,

// Counter counts up from zero.
//
//starbind:structure
//starbind:implementation
type Counter struct {
	value int
}

// NewCounter returns a counter at zero.
func NewCounter() Counter { return Counter{} }

// Increment adds by to the count.
func (c *Counter) Increment(by int) { c.value += by }

// Get returns the current count.
func (c Counter) Get() int { return c.value }
