package docstore

import (
	"github.com/cespare/xxhash/v2"
)

type valueFlags uint64

const (
	vfVerBit0 = valueFlags(1 << iota)
	vfVerBit1
	vfVerBit2
	vfVerBit3
	vfEncodingBit0

	vfVerMask       = (vfVerBit0 | vfVerBit1 | vfVerBit2 | vfVerBit3)
	vfVer1          = vfVerBit0
	vfJSON          = vfEncodingBit0
	vfSupportedMask = (vfVer1 | vfJSON)
	vfDefault       = vfVer1

	minValueSize = 1 + 1 + 8
)

func (vf valueFlags) ver() valueFlags {
	return vf & vfVerMask
}

func (vf valueFlags) encoding() EncodingMethod {
	if vf&vfJSON != 0 {
		return JSON
	}
	return MsgPack
}

func flagsFor(enc EncodingMethod) valueFlags {
	if enc == JSON {
		return vfDefault | vfJSON
	}
	return vfDefault
}

// value is a decoded frame: flags | data size | data | xxhash64(data).
type value struct {
	Flags valueFlags
	Data  []byte
	Sum   uint64
}

func appendValue(buf []byte, flags valueFlags, data []byte) []byte {
	if (flags &^ vfSupportedMask) != 0 {
		panic("invalid value flags")
	}
	buf = appendUvarint(buf, uint64(flags))
	buf = appendUvarint(buf, uint64(len(data)))
	buf = appendRaw(buf, data)
	return appendFixedUint64(buf, xxhash.Sum64(data))
}

func (vle *value) decode(raw []byte) error {
	if len(raw) < minValueSize {
		return dataErrf(raw, 0, nil, "invalid value: at least %d bytes required", minValueSize)
	}
	d := makeByteDecoder(raw)

	v, err := d.Uvarint()
	if err != nil {
		return err
	}
	if (v &^ uint64(vfSupportedMask)) != 0 {
		return dataErrf(raw, 0, nil, "invalid value: unsupported flags %x", v)
	}
	vle.Flags = valueFlags(v)
	if vle.Flags.ver() != vfVer1 {
		return dataErrf(raw, 0, nil, "invalid value: unsupported format version %d", vle.Flags.ver())
	}

	n, err := d.Uvarinti()
	if err != nil {
		return err
	}
	vle.Data, err = d.Raw(n)
	if err != nil {
		return err
	}
	off := d.Off()
	vle.Sum, err = d.FixedUint64()
	if err != nil {
		return err
	}
	if len(d.Buf) != 0 {
		return dataErrf(raw, d.Off(), nil, "invalid value: %d trailing bytes", len(d.Buf))
	}
	if actual := xxhash.Sum64(vle.Data); actual != vle.Sum {
		return dataErrf(raw, off, nil, "invalid value: checksum mismatch, stored %016x, computed %016x", vle.Sum, actual)
	}
	return nil
}
