package docstore

import (
	"bytes"
	"errors"
	"testing"
)

func TestStringKeysOrder(t *testing.T) {
	c := StringKeys[Status]{}
	keys := []Status{"", "a", "a\x00", "ab", "b", "\U0010FFFF"}
	for i := 1; i < len(keys); i++ {
		a, b := c.EncodeKey(nil, keys[i-1]), c.EncodeKey(nil, keys[i])
		if bytes.Compare(a, b) >= 0 {
			t.Errorf("** %q encodes to %x, not below %q at %x", keys[i-1], a, keys[i], b)
		}
	}
	for _, k := range keys {
		deepEqual(t, must(c.DecodeKey(c.EncodeKey(nil, k))), k)
	}

	raw := c.EncodeKey(nil, "abc")
	k := must(c.DecodeKey(raw))
	for i := range raw {
		raw[i] = 0
	}
	deepEqual(t, k, Status("abc"))

	_, err := c.DecodeKey(append(c.EncodeKey(nil, "a"), 0x42))
	var de *DataError
	if !errors.As(err, &de) {
		t.Errorf("** got %v, wanted DataError for trailing bytes", err)
	}
	_, err = c.DecodeKey([]byte{0x01})
	if !errors.As(err, &de) {
		t.Errorf("** got %v, wanted DataError", err)
	}
}

func TestUint64KeysOrder(t *testing.T) {
	c := Uint64Keys[uint64]{}
	vals := []uint64{0, 1, 109, 110, 255, 256, 65535, 1 << 32, 1<<64 - 1}
	for i := 1; i < len(vals); i++ {
		a, b := c.EncodeKey(nil, vals[i-1]), c.EncodeKey(nil, vals[i])
		if bytes.Compare(a, b) >= 0 {
			t.Errorf("** %d encodes to %x, not below %d at %x", vals[i-1], a, vals[i], b)
		}
	}
	for _, v := range vals {
		deepEqual(t, must(c.DecodeKey(c.EncodeKey(nil, v))), v)
	}
}

func TestUint64KeysOverflow(t *testing.T) {
	type Level uint8
	for _, v := range []uint64{256, 300} {
		wide := Uint64Keys[uint64]{}.EncodeKey(nil, v)
		_, err := Uint64Keys[Level]{}.DecodeKey(wide)
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("** %d: got %v, wanted DataError", v, err)
		}
	}
	deepEqual(t, must(Uint64Keys[Level]{}.DecodeKey(Uint64Keys[Level]{}.EncodeKey(nil, 200))), Level(200))
}

func TestMsgpackKeys(t *testing.T) {
	type Pair struct {
		Chain string            `msgpack:"c"`
		Asset string            `msgpack:"a"`
		Tags  map[string]string `msgpack:"t"`
	}
	c := MsgpackKeys[Pair]{}
	p := Pair{Chain: "eip155:1", Asset: "usdc", Tags: map[string]string{"z": "1", "a": "2", "m": "3"}}
	a := c.EncodeKey(nil, p)
	for i := 0; i < 5; i++ {
		deepEqual(t, c.EncodeKey(nil, p), a)
	}
	deepEqual(t, must(c.DecodeKey(a)), p)

	_, err := c.DecodeKey([]byte{0xc1})
	var de *DataError
	if !errors.As(err, &de) {
		t.Errorf("** got %v, wanted DataError", err)
	}
}

func TestNoKeyCodec(t *testing.T) {
	c := noKeyCodec{}
	isempty(t, c.EncodeKey(nil, NoKey{}))
	deepEqual(t, must(c.DecodeKey(nil)), NoKey{})
}
