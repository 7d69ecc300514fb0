/*
NAME
  testpattern.go

DESCRIPTION
  testpattern.go writes solid-color and 3-stripe I_PCM reference pictures,
  for use as self-contained seed pictures in place of an externally-encoded
  file. These are not part of the rewriter path: the rewriter always expects
  its A and B inputs to come from an external encoder's own IDR slice, and
  these painters exist only to make that input cheap to manufacture for
  tests and demonstrations.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package testpattern generates raw I_PCM reference pictures: solid color
// fields and 3-stripe patterns, in common BT.601 colors, as an alternate
// source of seed pictures for the scroll synthesizer.
package testpattern

import (
	"github.com/ausocean/h264scroll/bits"
	"github.com/ausocean/h264scroll/paramsets"
)

// BT.601 YCbCr values for a handful of common colors, used throughout this
// package's examples.
var (
	Gray  = Color{Y: 128, Cb: 128, Cr: 128}
	Red   = Color{Y: 81, Cb: 90, Cr: 240}
	Blue  = Color{Y: 41, Cb: 240, Cr: 110}
	Green = Color{Y: 145, Cb: 54, Cr: 34}
)

// Color is one macroblock's I_PCM sample value, shared across its whole
// 16x16 luma block and 8x8 chroma blocks (4:2:0 subsampling).
type Color struct {
	Y, Cb, Cr uint8
}

const mbTypeIPCM = 25

// writeIPCMMacroblock writes mb_type = 25 (I_PCM), byte-aligns, then the raw
// 256 luma + 64 Cb + 64 Cr samples.
func writeIPCMMacroblock(w *bits.Writer, c Color) {
	w.WriteUE(mbTypeIPCM)
	w.Flush() // pcm_alignment_zero_bit: align to a byte boundary.
	for i := 0; i < 256; i++ {
		w.WriteBits(uint32(c.Y), 8)
	}
	for i := 0; i < 64; i++ {
		w.WriteBits(uint32(c.Cb), 8)
	}
	for i := 0; i < 64; i++ {
		w.WriteBits(uint32(c.Cr), 8)
	}
}

const sliceTypeIAll = 7

// writeIDRSliceHeader writes the I-slice header for a freshly-minted IDR
// test pattern: frame_num 0, long_term_reference_flag 0 (these pictures are
// not registered as long-term references; that marking is applied only by
// the slicehdr rewriter when a test-pattern frame is later fed in as an
// external reference).
func writeIDRSliceHeader(w *bits.Writer, f paramsets.Facts) {
	w.WriteUE(0)             // first_mb_in_slice
	w.WriteUE(sliceTypeIAll) // slice_type
	w.WriteUE(0)             // pic_parameter_set_id
	w.WriteBits(0, f.Log2MaxFrameNum)
	w.WriteUE(0) // idr_pic_id
	if f.PicOrderCntType == 0 {
		w.WriteBits(0, f.Log2MaxPicOrderCntLSB)
	}
	w.WriteBit(0) // no_output_of_prior_pics_flag
	w.WriteBit(0) // long_term_reference_flag
	w.WriteSE(0)  // slice_qp_delta
	if f.DeblockingFilterControlPresent {
		w.WriteUE(1) // disable_deblocking_filter_idc = 1 (disable)
	}
}

// SolidColor returns the RBSP of an IDR I_PCM slice filling the whole
// picture described by f with c.
func SolidColor(f paramsets.Facts, c Color) []byte {
	w := bits.NewWriter(f.MBWidth()*f.MBHeight()*400 + 64)
	writeIDRSliceHeader(w, f)
	total := f.MBWidth() * f.MBHeight()
	for i := 0; i < total; i++ {
		writeIPCMMacroblock(w, c)
	}
	w.WriteTrailingBits()
	return w.Bytes()
}

// Striped returns the RBSP of an IDR I_PCM slice divided into three equal
// horizontal bands (top, middle, bottom), each filled with its own color.
func Striped(f paramsets.Facts, top, middle, bottom Color) []byte {
	w := bits.NewWriter(f.MBWidth()*f.MBHeight()*400 + 64)
	writeIDRSliceHeader(w, f)

	mbHeight := f.MBHeight()
	mbWidth := f.MBWidth()
	third := mbHeight / 3
	for row := 0; row < mbHeight; row++ {
		c := bottom
		switch {
		case row < third:
			c = top
		case row < 2*third:
			c = middle
		}
		for col := 0; col < mbWidth; col++ {
			writeIPCMMacroblock(w, c)
		}
	}
	w.WriteTrailingBits()
	return w.Bytes()
}
