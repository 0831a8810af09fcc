package docstore

import (
	"fmt"
	"io"
	"strings"
)

type DumpFlags uint64

const (
	DumpRegionHeaders = DumpFlags(1 << iota)
	DumpRows
	DumpStats
	DumpIndexRows

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump writes a human-readable listing of every used region. Owners come
// from the persisted claims, so Dump works on a store nobody has registered
// collections with in this process.
func (db *DB) Dump(w io.Writer, f DumpFlags) error {
	return db.read(func(tx *tx) error {
		claims, err := loadClaims(tx)
		if err != nil {
			return err
		}
		for _, id := range usedRegions(tx, claims) {
			dumpRegion(w, tx, f, regionStatsIn(tx, id, claims))
		}
		return nil
	})
}

func dumpRegion(w io.Writer, tx *tx, f DumpFlags, rs RegionStats) {
	prefix := rs.ID.bucketName()
	if rs.Owner != "" {
		prefix = rs.Owner + "." + rs.Role
	}

	if f.Contains(DumpRegionHeaders) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (region %v, %d keys)\n", prefix, rs.ID, rs.Keys)
	}
	if f.Contains(DumpStats) {
		fmt.Fprintf(w, "%s.stats: size = %d, alloc = %d\n", prefix, rs.Size, rs.Alloc)
	}

	b := tx.region(rs.ID)
	if b == nil {
		return
	}
	var rowFn func(w io.Writer, prefix string, pos int, k, v []byte)
	switch regionRole(rs.Role) {
	case rolePrimary:
		if !f.Contains(DumpRows) {
			return
		}
		rowFn = dumpDocumentRow
	case roleSecondary:
		if !f.Contains(DumpIndexRows) {
			return
		}
		rowFn = dumpIndexRow
	default:
		if !f.Contains(DumpRows) {
			return
		}
		rowFn = dumpRawRow
	}

	if f.Contains(DumpStats) || f.Contains(DumpRegionHeaders) {
		fmt.Fprintln(w, dumpSep2)
	}
	c := RawAll().newCursor(b.Cursor())
	var pos int
	for c.Next() {
		pos++
		rowFn(w, prefix, pos, c.Key(), c.Value())
	}
}

func dumpDocumentRow(w io.Writer, prefix string, pos int, k, v []byte) {
	key, err := decodeCompositeKey(k)
	if err != nil {
		fmt.Fprintf(w, "%s.%d ** ERROR: %v\n", prefix, pos, err)
		return
	}
	doc, err := decodeDocument[any](v)
	if err != nil {
		fmt.Fprintf(w, "%s.%d %v ** ERROR: %v\n", prefix, pos, key, err)
		return
	}
	fmt.Fprintf(w, "%s.%d %v = %s\n", prefix, pos, key, loggableData(doc.Data))
}

func dumpIndexRow(w io.Writer, prefix string, pos int, k, v []byte) {
	b, err := decodeIndexBucket(v)
	if err != nil {
		fmt.Fprintf(w, "%s.%d %s ** ERROR: %v\n", prefix, pos, hexstr(k), err)
		return
	}
	keys := make([]string, len(b.Keys))
	for i, key := range b.Keys {
		keys[i] = key.String()
	}
	fmt.Fprintf(w, "%s.%d %s => %s\n", prefix, pos, hexstr(k), strings.Join(keys, ", "))
}

func dumpRawRow(w io.Writer, prefix string, pos int, k, v []byte) {
	fmt.Fprintf(w, "%s.%d %s = %s\n", prefix, pos, hexstr(k), hexstr(v))
}
