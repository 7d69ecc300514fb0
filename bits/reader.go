/*
NAME
  reader.go

DESCRIPTION
  reader.go provides a bit-level reader over a borrowed byte slice, for
  parsing H.264 RBSP payloads.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bits

// Reader reads bits from a borrowed byte slice, most-significant bit first
// within each byte. Unlike an io.Reader-backed parser, a Reader never
// returns an error: reads past the end of buf return zero bits. This
// matches the H.264 RBSP convention that the end of meaningful data is
// signalled by the trailing-bits pattern within the payload, not by buffer
// exhaustion, so callers that need to detect overrun must track the
// expected length themselves (as the slice-header rewriter does).
//
// The zero value is not usable; construct with NewReader.
type Reader struct {
	buf    []byte
	bitPos int // Absolute bit position from the start of buf.
}

// NewReader returns a Reader over buf. buf is not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// ReadBit reads a single bit, returning 0 if the reader has run past the end
// of its buffer.
func (r *Reader) ReadBit() int {
	byteIdx := r.bitPos >> 3
	if byteIdx >= len(r.buf) {
		r.bitPos++
		return 0
	}
	shift := 7 - uint(r.bitPos&7)
	bit := int((r.buf[byteIdx] >> shift) & 1)
	r.bitPos++
	return bit
}

// ReadBits reads n bits and returns them as the least-significant bits of
// the result, most-significant bit read first. n must be in [1,32].
func (r *Reader) ReadBits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v = (v << 1) | uint32(r.ReadBit())
	}
	return v
}

// ReadUE reads an unsigned integer Exp-Golomb-coded (ue(v)) syntax element
// per section 9.1 of ITU-T H.264.
func (r *Reader) ReadUE() uint32 {
	leadingZeros := 0
	for r.ReadBit() == 0 {
		leadingZeros++
		if leadingZeros >= 32 {
			return 0
		}
	}
	if leadingZeros == 0 {
		return 0
	}
	suffix := r.ReadBits(leadingZeros)
	return (uint32(1) << uint(leadingZeros)) - 1 + suffix
}

// ReadSE reads a signed integer Exp-Golomb-coded (se(v)) syntax element per
// section 9.1.1 of ITU-T H.264: the inverse of Writer.WriteSE.
func (r *Reader) ReadSE() int32 {
	code := r.ReadUE()
	if code&1 != 0 {
		return int32((code + 1) / 2)
	}
	return -int32(code / 2)
}

// BitPosition returns the current read position in bits from the start of
// the buffer.
func (r *Reader) BitPosition() int { return r.bitPos }

// ByteAligned reports whether the reader is currently at the start of a byte.
func (r *Reader) ByteAligned() bool { return r.bitPos&7 == 0 }

// Seek sets the absolute bit position for the next read.
func (r *Reader) Seek(bitPos int) { r.bitPos = bitPos }
