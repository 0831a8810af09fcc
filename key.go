package docstore

import (
	"strconv"
	"strings"

	"github.com/jgraettinger/cockroach-encoding/encoding"
)

// MaxSortKey is the largest code point. As a sort key it sorts after every
// sort key that does not itself start with U+10FFFF.
const MaxSortKey = "\U0010FFFF"

// CompositeKey addresses a document: a partition key plus an optional sort
// key. An absent sort key sorts before every present one, including "".
type CompositeKey struct {
	PartitionKey string `msgpack:"p" json:"partition_key"`
	SortKey      string `msgpack:"s,omitempty" json:"sort_key,omitempty"`
	HasSortKey   bool   `msgpack:"h,omitempty" json:"has_sort_key,omitempty"`
}

// Key returns a key with no sort key.
func Key(partitionKey string) CompositeKey {
	return CompositeKey{PartitionKey: partitionKey}
}

// SortedKey returns a key with both components.
func SortedKey(partitionKey, sortKey string) CompositeKey {
	return CompositeKey{PartitionKey: partitionKey, SortKey: sortKey, HasSortKey: true}
}

// Sort returns the sort key and whether it is present.
func (k CompositeKey) Sort() (string, bool) {
	return k.SortKey, k.HasSortKey
}

func (k CompositeKey) Equal(o CompositeKey) bool {
	return k.PartitionKey == o.PartitionKey && k.HasSortKey == o.HasSortKey && (!k.HasSortKey || k.SortKey == o.SortKey)
}

// Compare orders keys by partition key, then by sort key with absent first.
// Strings compare bytewise, which for valid UTF-8 is code point order.
func (k CompositeKey) Compare(o CompositeKey) int {
	if c := strings.Compare(k.PartitionKey, o.PartitionKey); c != 0 {
		return c
	}
	switch {
	case !k.HasSortKey && !o.HasSortKey:
		return 0
	case !k.HasSortKey:
		return -1
	case !o.HasSortKey:
		return 1
	default:
		return strings.Compare(k.SortKey, o.SortKey)
	}
}

func (k CompositeKey) String() string {
	if !k.HasSortKey {
		return strconv.Quote(k.PartitionKey)
	}
	return strconv.Quote(k.PartitionKey) + "|" + strconv.Quote(k.SortKey)
}

// encode appends the order-preserving encoding of the key: bytewise order of
// encodings equals Compare order.
func (k CompositeKey) encode(buf []byte) []byte {
	buf = encoding.EncodeStringAscending(buf, k.PartitionKey)
	if k.HasSortKey {
		buf = encoding.EncodeStringAscending(buf, k.SortKey)
	} else {
		buf = encoding.EncodeNullAscending(buf)
	}
	return buf
}

// partitionPrefix is a prefix of every encoded key in the partition, and of
// no key in any other partition.
func partitionPrefix(buf []byte, partitionKey string) []byte {
	return encoding.EncodeStringAscending(buf, partitionKey)
}

// partitionRange selects the keys from {partitionKey, absent} through
// {partitionKey, MaxSortKey} inclusive.
func partitionRange(partitionKey string) RawRange {
	lower := Key(partitionKey).encode(nil)
	upper := SortedKey(partitionKey, MaxSortKey).encode(nil)
	return RawII(lower, upper).Prefixed(partitionPrefix(nil, partitionKey))
}

func decodeCompositeKey(raw []byte) (CompositeKey, error) {
	var k CompositeKey
	rest, pk, err := encoding.DecodeBytesAscending(raw, nil)
	if err != nil {
		return k, dataErrf(raw, 0, err, "invalid key: bad partition key")
	}
	k.PartitionKey = string(pk)
	if after, isNull := encoding.DecodeIfNull(rest); isNull {
		rest = after
	} else {
		off := len(raw) - len(rest)
		var sk []byte
		rest, sk, err = encoding.DecodeBytesAscending(rest, nil)
		if err != nil {
			return k, dataErrf(raw, off, err, "invalid key: bad sort key")
		}
		k.SortKey, k.HasSortKey = string(sk), true
	}
	if len(rest) != 0 {
		return k, dataErrf(raw, len(raw)-len(rest), nil, "invalid key: %d trailing bytes", len(rest))
	}
	return k, nil
}
