package docstore

import (
	"encoding/hex"
	"slices"
	"testing"
)

func TestRawRange(t *testing.T) {
	storages(t, func(t *testing.T, st storage) {
		k1, k2, k3, k4 := x("0101"), x("0102"), x("0201"), x("0202")
		write(t, st, func(tx storageTx) {
			b := must(tx.CreateBucket("r"))
			for _, k := range [][]byte{k3, k1, k4, k2} {
				ensure(b.Put(k, k))
			}
		})

		o := func(name string, rang RawRange, exp ...[]byte) {
			t.Helper()
			read(t, st, func(tx storageTx) {
				var out []string
				c := rang.newCursor(tx.Bucket("r").Cursor())
				for c.Next() {
					out = append(out, hex.EncodeToString(c.Key()))
					deepEqual(t, c.Value(), c.Key())
				}
				var expstr []string
				for _, k := range exp {
					expstr = append(expstr, hex.EncodeToString(k))
				}
				if !slices.Equal(out, expstr) {
					t.Errorf("** %s: got %v, wanted %v", name, out, expstr)
				}
			})
		}

		o("all", RawAll(), k1, k2, k3, k4)
		o("all reverse", RawAll().Reversed(), k4, k3, k2, k1)
		o("prefix", RawPrefix(x("01")), k1, k2)
		o("prefix reverse", RawPrefix(x("01")).Reversed(), k2, k1)
		o("prefix last", RawPrefix(x("02")).Reversed(), k4, k3)
		o("prefix none", RawPrefix(x("03")))
		o("inclusive", RawII(k2, k3), k2, k3)
		o("inclusive reverse", RawII(k2, k3).Reversed(), k3, k2)
		o("exclusive", RawRange{Lower: k1, Upper: k4}, k2, k3)
		o("exclusive reverse", RawRange{Lower: k1, Upper: k4, Reverse: true}, k3, k2)
		o("upper past end reverse", RawRange{Upper: x("0300"), Reverse: true}, k4, k3, k2, k1)
		o("upper between reverse", RawRange{Upper: x("0150"), UpperInc: true, Reverse: true}, k2, k1)
		o("lower between", RawRange{Lower: x("0150")}, k3, k4)
		o("prefixed bounds", RawII(x("0102"), x("0102")).Prefixed(x("01")), k2)
		o("prefixed bounds reverse", RawII(x("0100"), x("01ff")).Prefixed(x("01")).Reversed(), k2, k1)
	})
}
