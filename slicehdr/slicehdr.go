/*
NAME
  slicehdr.go

DESCRIPTION
  slicehdr.go rewrites an externally-encoded intra slice into a long-term
  reference this system's scroll sequence can use: its slice header is
  replaced, but its compressed macroblock data is carried across bit-exact.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package slicehdr rewrites the slice header of an externally-encoded intra
// picture, while carrying its compressed macroblock payload across
// unmodified. The caller supplies two independent parameter-set facts: one
// describing the syntax the external encoder used (for parsing), and one
// describing the syntax this system's output uses (for emitting).
package slicehdr

import (
	"github.com/ausocean/h264scroll/bits"
	"github.com/ausocean/h264scroll/paramsets"
	"github.com/pkg/errors"
)

// Slice type this package writes: only I-all is ever emitted.
const sliceTypeIAll = 7

// Parsed is the subset of an external intra slice header this system
// preserves verbatim when rewriting it, plus the bit offset at which the
// compressed macroblock data begins.
type Parsed struct {
	MBDataStartBit int

	SliceQPDelta               int32
	DisableDeblockingFilterIDC uint32
	SliceAlphaC0OffsetDiv2     int32
	SliceBetaOffsetDiv2        int32
}

// errShortHeader is returned when the slice header's prefix runs past the
// end of the RBSP before reaching the macroblock data, which indicates the
// caller passed facts that don't match the stream being parsed.
var errShortHeader = errors.New("slicehdr: slice header prefix overruns RBSP")

// parse reads the prefix of an external intra slice header, up to the
// compressed macroblock data, using parseFacts to know the width of
// frame_num and whether picture-order-count syntax is present. isIDR
// selects whether idr_pic_id and the two-bit IDR reference-marking fields
// are present.
func parse(rbsp []byte, parseFacts paramsets.Facts, isIDR bool) (Parsed, error) {
	r := bits.NewReader(rbsp)

	r.ReadUE()                             // first_mb_in_slice
	r.ReadUE()                             // slice_type
	r.ReadUE()                             // pic_parameter_set_id
	r.ReadBits(parseFacts.Log2MaxFrameNum) // frame_num

	if isIDR {
		r.ReadUE() // idr_pic_id
	}

	if parseFacts.PicOrderCntType == 0 {
		r.ReadBits(parseFacts.Log2MaxPicOrderCntLSB) // pic_order_cnt_lsb
	}

	if isIDR {
		r.ReadBit() // no_output_of_prior_pics_flag
		r.ReadBit() // long_term_reference_flag
	}

	var p Parsed
	p.SliceQPDelta = r.ReadSE()

	if parseFacts.DeblockingFilterControlPresent {
		p.DisableDeblockingFilterIDC = r.ReadUE()
		if p.DisableDeblockingFilterIDC != 1 {
			p.SliceAlphaC0OffsetDiv2 = r.ReadSE()
			p.SliceBetaOffsetDiv2 = r.ReadSE()
		}
	}

	p.MBDataStartBit = r.BitPosition()
	if p.MBDataStartBit > len(rbsp)*8 {
		return Parsed{}, errShortHeader
	}
	return p, nil
}

// copyTail appends every bit of rbsp from startBit to its end onto w,
// carrying the compressed macroblock data across without reinterpreting it.
func copyTail(w *bits.Writer, rbsp []byte, startBit int) {
	r := bits.NewReader(rbsp)
	r.Seek(startBit)
	total := len(rbsp) * 8
	for bitPos := startBit; bitPos < total; bitPos++ {
		w.WriteBit(r.ReadBit())
	}
}

func writeDeblocking(w *bits.Writer, writeFacts paramsets.Facts, p Parsed) {
	if !writeFacts.DeblockingFilterControlPresent {
		return
	}
	w.WriteUE(p.DisableDeblockingFilterIDC)
	if p.DisableDeblockingFilterIDC != 1 {
		w.WriteSE(p.SliceAlphaC0OffsetDiv2)
		w.WriteSE(p.SliceBetaOffsetDiv2)
	}
}

// RewriteIDR parses an external IDR slice's RBSP using parseFacts, and
// re-emits it under writeFacts as an IDR slice explicitly marked as a
// long-term reference (long_term_reference_flag = 1), preserving its
// slice_qp_delta and deblocking-control fields and carrying its macroblock
// data across bit-exact.
func RewriteIDR(rbsp []byte, writeFacts, parseFacts paramsets.Facts) ([]byte, error) {
	p, err := parse(rbsp, parseFacts, true)
	if err != nil {
		return nil, errors.Wrap(err, "slicehdr: parsing external IDR")
	}

	w := bits.NewWriter(len(rbsp) + 32)
	w.WriteUE(0)                               // first_mb_in_slice
	w.WriteUE(sliceTypeIAll)                   // slice_type
	w.WriteUE(0)                               // pic_parameter_set_id
	w.WriteBits(0, writeFacts.Log2MaxFrameNum) // frame_num = 0
	w.WriteUE(0)                               // idr_pic_id

	if writeFacts.PicOrderCntType == 0 {
		w.WriteBits(0, writeFacts.Log2MaxPicOrderCntLSB)
	}

	w.WriteBit(0) // no_output_of_prior_pics_flag
	w.WriteBit(1) // long_term_reference_flag

	w.WriteSE(p.SliceQPDelta)
	writeDeblocking(w, writeFacts, p)

	// The copied tail runs to the end of the source RBSP and so already
	// carries the source's own rbsp_trailing_bits; this system must not
	// append a second trailing-bits pattern after it.
	copyTail(w, rbsp, p.MBDataStartBit)
	return w.Bytes(), nil
}

// RewriteAsNonIDR parses an external IDR slice's RBSP using parseFacts, and
// re-emits it under writeFacts as a non-IDR intra slice at the given
// frame_num, demoted out of IDR status but marked as a long-term reference
// via the MMCO sequence 4 (raise max_long_term_frame_idx to 1), 6 (mark
// this picture long_term_frame_idx=1), 0 (end). slice_qp_delta and
// deblocking-control fields are preserved and the macroblock data is
// carried across bit-exact.
func RewriteAsNonIDR(rbsp []byte, writeFacts, parseFacts paramsets.Facts, frameNum int) ([]byte, error) {
	p, err := parse(rbsp, parseFacts, true)
	if err != nil {
		return nil, errors.Wrap(err, "slicehdr: parsing external IDR")
	}

	w := bits.NewWriter(len(rbsp) + 32)
	w.WriteUE(0)             // first_mb_in_slice
	w.WriteUE(sliceTypeIAll) // slice_type
	w.WriteUE(0)             // pic_parameter_set_id
	w.WriteBits(uint32(frameNum), writeFacts.Log2MaxFrameNum)

	if writeFacts.PicOrderCntType == 0 {
		w.WriteBits(uint32(frameNum*2), writeFacts.Log2MaxPicOrderCntLSB)
	}

	w.WriteBit(1) // adaptive_ref_pic_marking_mode_flag
	w.WriteUE(4)  // MMCO 4
	w.WriteUE(2)  // max_long_term_frame_idx_plus1 = 2
	w.WriteUE(6)  // MMCO 6
	w.WriteUE(1)  // long_term_frame_idx = 1
	w.WriteUE(0)  // MMCO 0 (end)

	w.WriteSE(p.SliceQPDelta)
	writeDeblocking(w, writeFacts, p)

	copyTail(w, rbsp, p.MBDataStartBit)
	return w.Bytes(), nil
}
