/*
NAME
  writer.go

DESCRIPTION
  writer.go provides a bit-level writer for assembling H.264 RBSP payloads,
  including unsigned and signed Exp-Golomb codes.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bits provides a bit-level writer and reader for assembling and
// parsing H.264 RBSP payloads, including unsigned and signed Exp-Golomb
// codes as defined in section 9.1 of ITU-T H.264.
package bits

// Writer assembles a byte buffer one bit at a time, most-significant bit
// first within each byte. A partially-assembled byte is held until it fills
// or the caller explicitly flushes it.
//
// The zero value is not usable; construct with NewWriter.
type Writer struct {
	buf    []byte
	bitPos int // Number of bits already placed in cur, in [0,7].
	cur    byte
}

// NewWriter returns a Writer with its backing buffer pre-allocated to
// capacity bytes. The buffer grows automatically if more is written; capacity
// is only a sizing hint.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// WriteBit writes the least-significant bit of v.
func (w *Writer) WriteBit(v int) {
	w.cur = (w.cur << 1) | byte(v&1)
	w.bitPos++
	if w.bitPos == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.bitPos = 0
	}
}

// WriteBits writes the n least-significant bits of v, most-significant first.
// n must be in [1,32].
func (w *Writer) WriteBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(int((v >> uint(i)) & 1))
	}
}

// WriteUE writes v as an unsigned integer Exp-Golomb-coded (ue(v)) syntax
// element, per section 9.1 of ITU-T H.264: M leading zeros, a single 1, then
// M suffix bits, where the concatenation (1||suffix) equals v+1.
func (w *Writer) WriteUE(v uint32) {
	if v == 0 {
		w.WriteBit(1)
		return
	}
	code := v + 1
	leadingZeros := 0
	for t := code; t > 1; t >>= 1 {
		leadingZeros++
	}
	for i := 0; i < leadingZeros; i++ {
		w.WriteBit(0)
	}
	w.WriteBits(code, leadingZeros+1)
}

// WriteSE writes v as a signed integer Exp-Golomb-coded (se(v)) syntax
// element per section 9.1.1: positive v maps to 2v-1, non-positive v maps to
// -2v, and the result is written as ue(v).
func (w *Writer) WriteSE(v int32) {
	var mapped uint32
	if v > 0 {
		mapped = uint32(2*v - 1)
	} else {
		mapped = uint32(-2 * v)
	}
	w.WriteUE(mapped)
}

// WriteTrailingBits writes the RBSP trailing bits: a single rbsp_stop_one_bit
// followed by rbsp_alignment_zero_bit until byte-aligned.
func (w *Writer) WriteTrailingBits() {
	w.WriteBit(1)
	for w.bitPos != 0 {
		w.WriteBit(0)
	}
}

// ByteAligned reports whether the writer is currently at the start of a byte.
func (w *Writer) ByteAligned() bool { return w.bitPos == 0 }

// BitPosition returns the current write position in bits from the start of
// the buffer, including any bits held in the partially-assembled byte.
func (w *Writer) BitPosition() int { return len(w.buf)*8 + w.bitPos }

// Flush pads any partially-assembled byte with low-order zero bits and
// appends it to the buffer. After Flush, ByteAligned is always true.
func (w *Writer) Flush() {
	if w.bitPos == 0 {
		return
	}
	w.cur <<= uint(8 - w.bitPos)
	w.buf = append(w.buf, w.cur)
	w.cur = 0
	w.bitPos = 0
}

// Bytes flushes any partial byte and returns the assembled buffer. The
// returned slice aliases the Writer's internal buffer and must not be
// retained across further writes.
func (w *Writer) Bytes() []byte {
	w.Flush()
	return w.buf
}
