package docstore

import (
	"fmt"
	"sync/atomic"
)

// borrowCell enforces single-writer access to a collection at runtime. Any
// number of shared borrows may coexist, but an exclusive borrow excludes all
// others. Conflicts panic immediately: they mean a caller re-entered the
// collection (for example from a secondary key function) or used it from two
// goroutines at once, which the store does not support.
type borrowCell struct {
	name  string
	state atomic.Int32 // -1 exclusive, 0 free, n>0 shared
}

type borrowPanic struct {
	name      string
	exclusive bool
}

func (p borrowPanic) Error() string {
	if p.exclusive {
		return fmt.Sprintf("docstore: %s: already borrowed, cannot borrow for writing", p.name)
	}
	return fmt.Sprintf("docstore: %s: already borrowed for writing", p.name)
}

func (c *borrowCell) borrow() {
	for {
		s := c.state.Load()
		if s < 0 {
			panic(borrowPanic{c.name, false})
		}
		if c.state.CompareAndSwap(s, s+1) {
			return
		}
	}
}

func (c *borrowCell) release() {
	if c.state.Add(-1) < 0 {
		panic("docstore: unbalanced shared borrow release")
	}
}

func (c *borrowCell) borrowMut() {
	if !c.state.CompareAndSwap(0, -1) {
		panic(borrowPanic{c.name, true})
	}
}

func (c *borrowCell) releaseMut() {
	if !c.state.CompareAndSwap(-1, 0) {
		panic("docstore: unbalanced exclusive borrow release")
	}
}
