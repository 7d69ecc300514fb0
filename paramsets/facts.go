/*
NAME
  facts.go

DESCRIPTION
  facts.go defines the Facts value threaded through every stage of the
  pipeline that needs to know picture dimensions or SPS/PPS-derived syntax
  parameters, in place of any process-wide state.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package paramsets emits and parses the H.264 Sequence and Picture
// Parameter Sets this system uses, and carries the small set of
// parameter-set-derived facts (dimensions, frame_num width, picture-order
// type) that every other package needs.
package paramsets

import "github.com/pkg/errors"

// MaxWaypoints bounds the waypoint table: the scroll synthesizer never holds
// more than this many intermediate long-term references at once.
const MaxWaypoints = 8

// Facts carries the subset of SPS/PPS fields the rest of this system needs.
// A pipeline run holds two independent Facts values: one parsed from the
// external encoder's stream (used to parse its slice headers), and one this
// system chooses for everything it writes (used to emit new slice headers).
// Conflating the two silently corrupts bit positions, since they commonly
// differ in Log2MaxFrameNum and PicOrderCntType.
type Facts struct {
	// Width and Height are the picture dimensions in pixels. Both must be a
	// multiple of 16; other dimensions are unsupported.
	Width, Height int

	// Log2MaxFrameNum is log2_max_frame_num, in [4,16]. frame_num is written
	// with this many bits and wraps modulo 1<<Log2MaxFrameNum.
	Log2MaxFrameNum int

	// PicOrderCntType is pic_order_cnt_type. Only 0 and 2 are supported; type
	// 1 is a domain error.
	PicOrderCntType int

	// Log2MaxPicOrderCntLSB is log2_max_pic_order_cnt_lsb, used only when
	// PicOrderCntType == 0.
	Log2MaxPicOrderCntLSB int

	// NumRefIdxL0DefaultMinus1 is the PPS's num_ref_idx_l0_default_active_minus1.
	NumRefIdxL0DefaultMinus1 int

	// DeblockingFilterControlPresent is the PPS's
	// deblocking_filter_control_present_flag.
	DeblockingFilterControlPresent bool
}

// MBWidth returns the picture width in macroblocks.
func (f Facts) MBWidth() int { return f.Width / 16 }

// MBHeight returns the picture height in macroblocks.
func (f Facts) MBHeight() int { return f.Height / 16 }

// MaxFrameNum returns 1<<Log2MaxFrameNum, the modulus frame_num wraps at.
func (f Facts) MaxFrameNum() int { return 1 << uint(f.Log2MaxFrameNum) }

// Validate reports a domain error if f describes a configuration this
// system cannot encode: dimensions that aren't a multiple of 16, a
// picture-order-count type other than 0 or 2, or a Log2MaxFrameNum outside
// [4,16].
func (f Facts) Validate() error {
	if f.Width <= 0 || f.Width%16 != 0 {
		return errors.Errorf("paramsets: width %d is not a positive multiple of 16", f.Width)
	}
	if f.Height <= 0 || f.Height%16 != 0 {
		return errors.Errorf("paramsets: height %d is not a positive multiple of 16", f.Height)
	}
	if f.PicOrderCntType != 0 && f.PicOrderCntType != 2 {
		return errors.Errorf("paramsets: unsupported pic_order_cnt_type %d", f.PicOrderCntType)
	}
	if f.Log2MaxFrameNum < 4 || f.Log2MaxFrameNum > 16 {
		return errors.Errorf("paramsets: log2_max_frame_num %d out of range [4,16]", f.Log2MaxFrameNum)
	}
	return nil
}

// WriteFacts returns the Facts this system uses for everything it emits,
// given the picture dimensions recovered from the external reference
// streams and the picture-order-count configuration those streams use
// (mirrored so the rewritten slice headers stay self-consistent with their
// own POC arithmetic).
//
// The write side diverges from the parse side in three respects:
// Log2MaxFrameNum is always fixed at 4 for headroom,
// NumRefIdxL0DefaultMinus1 is always 1 (two active references by default),
// and DeblockingFilterControlPresent is always true, regardless of what the
// external encoder chose — every synthesized P-slice disables deblocking
// explicitly, so the flag that controls whether that syntax is even
// present must always be set, not mirrored from a reference whose PPS
// might omit it.
func WriteFacts(width, height, picOrderCntType, log2MaxPicOrderCntLSB int) Facts {
	return Facts{
		Width:                          width,
		Height:                         height,
		Log2MaxFrameNum:                4,
		PicOrderCntType:                picOrderCntType,
		Log2MaxPicOrderCntLSB:          log2MaxPicOrderCntLSB,
		NumRefIdxL0DefaultMinus1:       1,
		DeblockingFilterControlPresent: true,
	}
}
