// Package wire frames entries stored in a level: a fixed header carrying the
// entry's version token ahead of the codec payload. Strict decoding lets the
// engine detect foreign or corrupt bytes in a shared backend and self-heal.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const formatVersion byte = 1

var (
	ErrCorrupt = errors.New("nebulex: corrupt entry")
	magic4     = [...]byte{'N', 'B', 'L', 'X'}
)

const header = 4 + 1 + 8 + 4 // magic | fmt | token(u64 be) | vlen(u32 be)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames payload with the entry's version token:
// magic(4) | fmt(1) | token(u64 be) | vlen(u32 be) | payload(vlen)
func Encode(token uint64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(header + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(formatVersion)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], token)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the framing and returns the version token and payload.
// Trailing bytes beyond the declared payload length are rejected.
func Decode(b []byte) (token uint64, payload []byte, err error) {
	if len(b) < header || !hasMagic(b) || b[4] != formatVersion {
		return 0, nil, ErrCorrupt
	}

	off := 5

	token = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact-length check, overflow-safe
		return 0, nil, ErrCorrupt
	}

	return token, b[off : off+vlen], nil
}
