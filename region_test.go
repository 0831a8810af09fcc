package docstore

import (
	"testing"
)

func TestRegionBucketNames(t *testing.T) {
	for _, id := range []RegionID{0, 7, 42, MaxRegionID} {
		name := id.bucketName()
		back, ok := parseRegionBucketName(name)
		if !ok || back != id {
			t.Errorf("** %v: %q parsed back as %v, %v", id, name, back, ok)
		}
	}
	deepEqual(t, RegionID(7).bucketName(), "r007")

	for _, name := range []string{"_meta", "r", "r7", "r0077", "r255", "rabc", "x001"} {
		if _, ok := parseRegionBucketName(name); ok {
			t.Errorf("** %q parsed as a region bucket", name)
		}
	}
	deepEqual(t, RegionID(255).valid(), false)
}

func TestBorrowCell(t *testing.T) {
	var c borrowCell
	c.name = "x"
	c.borrow()
	c.borrow()
	c.release()
	c.release()
	c.borrowMut()
	c.releaseMut()

	c.borrowMut()
	func() {
		defer func() {
			p, ok := recover().(borrowPanic)
			if !ok || p.exclusive {
				t.Errorf("** got %v, wanted shared borrowPanic", p)
			}
		}()
		c.borrow()
	}()
	c.releaseMut()

	c.borrow()
	func() {
		defer func() {
			p, ok := recover().(borrowPanic)
			if !ok || !p.exclusive {
				t.Errorf("** got %v, wanted exclusive borrowPanic", p)
			}
		}()
		c.borrowMut()
	}()
	c.release()
	deepEqual(t, c.state.Load(), int32(0))
}
