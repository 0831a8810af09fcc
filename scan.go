package docstore

import (
	"bytes"
)

// RawRange defines a range of encoded keys within a region. Prefix restricts
// the scan to keys that start with it; Lower and Upper are optional bounds
// that must share Prefix when both are set.
type RawRange struct {
	Prefix   []byte
	Lower    []byte
	Upper    []byte
	LowerInc bool
	UpperInc bool
	Reverse  bool
}

func RawAll() RawRange                           { return RawRange{} }
func RawII(l, u []byte) RawRange                 { return RawRange{Lower: l, Upper: u, LowerInc: true, UpperInc: true} }
func RawPrefix(p []byte) RawRange                { return RawRange{Prefix: p} }
func (rang RawRange) Prefixed(p []byte) RawRange { rang.Prefix = p; return rang }
func (rang RawRange) Reversed() RawRange         { rang.Reverse = true; return rang }

func (r *RawRange) start(bcur storageCursor) ([]byte, []byte) {
	var k, v []byte
	var skipInitial bool
	if r.Reverse {
		upper := r.Upper
		if upper != nil {
			skipInitial = !r.UpperInc
			if r.Prefix != nil && !bytes.HasPrefix(upper, r.Prefix) {
				panic("upper bound does not match prefix")
			}
			k, v = bcur.Seek(upper)
			if k == nil {
				k, v = bcur.Last()
				skipInitial = false
			} else if !bytes.Equal(k, upper) {
				k, v = bcur.Prev()
				skipInitial = false
			}
		} else if r.Prefix != nil {
			k, v = seekLast(bcur, r.Prefix)
		} else {
			k, v = bcur.Last()
		}
	} else {
		lower := r.Lower
		if lower != nil {
			skipInitial = !r.LowerInc
			if r.Prefix != nil && !bytes.HasPrefix(lower, r.Prefix) {
				panic("lower bound does not match prefix")
			}
		} else if r.Prefix != nil {
			lower = r.Prefix
		}
		if lower != nil {
			k, v = bcur.Seek(lower)
			if skipInitial && !bytes.Equal(k, lower) {
				skipInitial = false
			}
		} else {
			k, v = bcur.First()
		}
	}
	if k != nil && r.match(k) {
		if skipInitial {
			return r.next(bcur)
		}
		return k, v
	}
	return nil, nil
}

// seekLast moves to the last key with the given prefix, or to the last key
// before where such keys would be.
func seekLast(bcur storageCursor, prefix []byte) ([]byte, []byte) {
	limit := append([]byte(nil), prefix...)
	if inc(limit) {
		k, _ := bcur.Seek(limit)
		if k == nil {
			return bcur.Last()
		}
		return bcur.Prev()
	}

	// All-0xFF prefix: nothing sorts between it and the end of its run.
	k, _ := bcur.Seek(prefix)
	for k != nil && bytes.HasPrefix(k, prefix) {
		k, _ = bcur.Next()
	}
	if k == nil {
		return bcur.Last()
	}
	return bcur.Prev()
}

func (r *RawRange) next(bcur storageCursor) ([]byte, []byte) {
	var k, v []byte
	if r.Reverse {
		k, v = bcur.Prev()
	} else {
		k, v = bcur.Next()
	}
	if k != nil && r.match(k) {
		return k, v
	}
	return nil, nil
}

func (r *RawRange) match(k []byte) bool {
	if r.Prefix != nil && !bytes.HasPrefix(k, r.Prefix) {
		return false
	}
	if r.Reverse {
		if lower := r.Lower; lower != nil {
			cmp := bytes.Compare(k, lower)
			if cmp == -1 || (cmp == 0 && !r.LowerInc) {
				return false
			}
		}
	} else {
		if upper := r.Upper; upper != nil {
			cmp := bytes.Compare(k, upper)
			if cmp == 1 || (cmp == 0 && !r.UpperInc) {
				return false
			}
		}
	}
	return true
}

func (r RawRange) newCursor(bcur storageCursor) *RawRangeCursor {
	return &RawRangeCursor{rang: r, bcur: bcur}
}

// RawRangeCursor walks the keys of a RawRange. Key and Value are only valid
// until the enclosing transaction ends.
type RawRangeCursor struct {
	rang RawRange
	bcur storageCursor
	k, v []byte
	init bool
}

func (c *RawRangeCursor) Next() bool {
	if c.init {
		c.k, c.v = c.rang.next(c.bcur)
	} else {
		c.init = true
		c.k, c.v = c.rang.start(c.bcur)
	}
	return c.k != nil
}

func (c *RawRangeCursor) Key() []byte   { return c.k }
func (c *RawRangeCursor) Value() []byte { return c.v }
