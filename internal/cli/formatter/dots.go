package formatter

import (
	"fmt"
	"io"
	"sync"
)

// Dots prints one dot per finished unit of work so long report runs show
// they are alive. A nil *Dots does nothing.
type Dots struct {
	mu sync.Mutex
	w  io.Writer
	n  int
}

// NewDots returns a Dots writing to w.
func NewDots(w io.Writer) *Dots {
	return &Dots{w: w}
}

// Step prints a single dot.
func (d *Dots) Step() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.w, StylePurple.Render("."))
	d.n++
}

// Done ends the dot line. It prints nothing when no dot was printed.
func (d *Dots) Done() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.n > 0 {
		fmt.Fprintln(d.w)
		d.n = 0
	}
}

// Count returns the number of dots printed since the last Done.
func (d *Dots) Count() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.n
}
