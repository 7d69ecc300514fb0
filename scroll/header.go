/*
NAME
  header.go

DESCRIPTION
  header.go writes the P-slice header and P_L0_16x16 macroblock syntax this
  system's scroll and waypoint frames share.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package scroll

import (
	"github.com/ausocean/h264scroll/bits"
	"github.com/ausocean/h264scroll/paramsets"
)

const sliceTypeP = 0

// writePSliceHeader writes the header common to every synthesized P-slice:
// frame_num, optional POC LSB, the explicit reference-list modification
// naming A, B and every waypoint currently in the table, and — when this
// picture is itself a reference (a waypoint) — the MMCO sequence that marks
// it as long-term at longTermIdx. Non-reference pictures omit
// dec_ref_pic_marking entirely, per H.264 syntax.
func writePSliceHeader(w *bits.Writer, wf paramsets.Facts, frameNum int, waypoints []Waypoint, isReference bool, longTermIdx int) {
	w.WriteUE(0)          // first_mb_in_slice
	w.WriteUE(sliceTypeP) // slice_type
	w.WriteUE(0)          // pic_parameter_set_id
	w.WriteBits(uint32(frameNum%wf.MaxFrameNum()), wf.Log2MaxFrameNum)

	if wf.PicOrderCntType == 0 {
		w.WriteBits(uint32((frameNum*2)%(1<<uint(wf.Log2MaxPicOrderCntLSB))), wf.Log2MaxPicOrderCntLSB)
	}

	w.WriteBit(1) // num_ref_idx_active_override_flag
	numRefs := 2 + len(waypoints)
	w.WriteUE(uint32(numRefs - 1))

	w.WriteBit(1) // ref_pic_list_modification_flag_l0
	w.WriteUE(2)
	w.WriteUE(0) // long_term_pic_num = 0 (A)
	w.WriteUE(2)
	w.WriteUE(1) // long_term_pic_num = 1 (B)
	for _, wp := range waypoints {
		w.WriteUE(2)
		w.WriteUE(uint32(wp.LongTermIdx))
	}
	w.WriteUE(3) // end of modification

	if isReference {
		w.WriteBit(1) // adaptive_ref_pic_marking_mode_flag
		w.WriteUE(4)  // MMCO 4
		w.WriteUE(uint32(longTermIdx + 1))
		w.WriteUE(6) // MMCO 6
		w.WriteUE(uint32(longTermIdx))
		w.WriteUE(0) // MMCO 0 (end)
	}

	w.WriteSE(0) // slice_qp_delta
	if wf.DeblockingFilterControlPresent {
		w.WriteUE(1) // disable_deblocking_filter_idc = 1 (disable)
	}
}

// writeP16x16 writes one P_L0_16x16 macroblock: mb_type 0, the reference
// index (truncated exp-Golomb when exactly two references are active,
// unsigned exp-Golomb otherwise), the quarter-pel motion-vector delta, and
// coded_block_pattern = 0. P_Skip is never emitted: every macroblock is
// preceded by an explicit (possibly zero) skip-run count, written by the
// caller.
func writeP16x16(w *bits.Writer, numRefs, refIdx int, mvdXQpel, mvdYQpel int32) {
	w.WriteUE(0) // mb_type = P_L0_16x16
	switch numRefs {
	case 1:
		// No ref_idx syntax: only one possible value.
	case 2:
		if refIdx == 0 {
			w.WriteBit(1)
		} else {
			w.WriteBit(0)
		}
	default:
		w.WriteUE(uint32(refIdx))
	}
	w.WriteSE(mvdXQpel)
	w.WriteSE(mvdYQpel)
	w.WriteUE(0) // coded_block_pattern = 0
}
