package docstore

import (
	"github.com/jgraettinger/cockroach-encoding/encoding"
	"github.com/vmihailenco/msgpack/v5"
)

// KeyCodec converts secondary keys to and from the bytes stored in the index
// region. Equal keys must encode to equal bytes. Codecs that also preserve
// order make SecondaryKeys return keys in key order.
type KeyCodec[K any] interface {
	EncodeKey(buf []byte, k K) []byte
	DecodeKey(raw []byte) (K, error)
}

// NoKey is the secondary key type of collections without a secondary index.
type NoKey struct{}

type noKeyCodec struct{}

func (noKeyCodec) EncodeKey(buf []byte, k NoKey) []byte { return buf }

func (noKeyCodec) DecodeKey(raw []byte) (NoKey, error) { return NoKey{}, nil }

// StringKeys is an order-preserving codec for string-like keys.
type StringKeys[K ~string] struct{}

func (StringKeys[K]) EncodeKey(buf []byte, k K) []byte {
	return encoding.EncodeStringAscending(buf, string(k))
}

func (StringKeys[K]) DecodeKey(raw []byte) (K, error) {
	rest, s, err := encoding.DecodeBytesAscending(raw, nil)
	if err != nil {
		return "", dataErrf(raw, 0, err, "invalid string key")
	}
	if len(rest) != 0 {
		return "", dataErrf(raw, len(raw)-len(rest), nil, "invalid string key: %d trailing bytes", len(rest))
	}
	return K(string(s)), nil
}

// Uint64Keys is an order-preserving codec for unsigned integer keys.
type Uint64Keys[K ~uint64 | ~uint32 | ~uint16 | ~uint8] struct{}

func (Uint64Keys[K]) EncodeKey(buf []byte, k K) []byte {
	return encoding.EncodeUvarintAscending(buf, uint64(k))
}

func (Uint64Keys[K]) DecodeKey(raw []byte) (K, error) {
	rest, v, err := encoding.DecodeUvarintAscending(raw)
	if err != nil {
		return 0, dataErrf(raw, 0, err, "invalid integer key")
	}
	if len(rest) != 0 {
		return 0, dataErrf(raw, len(raw)-len(rest), nil, "invalid integer key: %d trailing bytes", len(rest))
	}
	if uint64(K(v)) != v {
		return 0, dataErrf(raw, 0, nil, "integer key %d overflows %T", v, K(0))
	}
	return K(v), nil
}

// MsgpackKeys encodes any msgpack-serializable key, such as a struct or an
// enum. Encodings are deterministic (map keys are sorted) but not ordered.
type MsgpackKeys[K any] struct{}

func (MsgpackKeys[K]) EncodeKey(buf []byte, k K) []byte {
	return must(MsgPack.encode(buf, k))
}

func (MsgpackKeys[K]) DecodeKey(raw []byte) (K, error) {
	var k K
	err := msgpack.Unmarshal(raw, &k)
	if err != nil {
		return k, dataErrf(raw, 0, err, "invalid msgpack key")
	}
	return k, nil
}
