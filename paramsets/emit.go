/*
NAME
  emit.go

DESCRIPTION
  emit.go generates the minimal Baseline-profile SPS and PPS this system
  writes to every output stream.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package paramsets

import "github.com/ausocean/h264scroll/bits"

// Baseline-profile constants used by EmitSPS.
const (
	profileIDCBaseline = 66
	constraintFlags    = 0xC0 // constraint_set0_flag and constraint_set1_flag set.
	levelIDC40         = 40
)

// EmitSPS returns the RBSP of a minimal Baseline-profile SPS describing f.
// max_num_ref_frames is set to two plus waypointCeiling, the largest number
// of simultaneously-live long-term references this system's reference
// lists ever name (the two seed pictures plus the bounded waypoint table).
func EmitSPS(f Facts, waypointCeiling int) []byte {
	w := bits.NewWriter(32)
	w.WriteBits(profileIDCBaseline, 8)
	w.WriteBits(constraintFlags, 8)
	w.WriteBits(levelIDC40, 8)
	w.WriteUE(0) // seq_parameter_set_id
	w.WriteUE(uint32(f.Log2MaxFrameNum - 4))
	w.WriteUE(uint32(f.PicOrderCntType))
	if f.PicOrderCntType == 0 {
		w.WriteUE(uint32(f.Log2MaxPicOrderCntLSB - 4))
	}
	w.WriteUE(uint32(2 + waypointCeiling)) // max_num_ref_frames
	w.WriteBit(0)                          // gaps_in_frame_num_value_allowed_flag
	w.WriteUE(uint32(f.MBWidth() - 1))     // pic_width_in_mbs_minus1
	w.WriteUE(uint32(f.MBHeight() - 1))    // pic_height_in_map_units_minus1
	w.WriteBit(1)                          // frame_mbs_only_flag
	w.WriteBit(1)                          // direct_8x8_inference_flag
	w.WriteBit(0)                          // frame_cropping_flag
	w.WriteBit(0)                          // vui_parameters_present_flag
	w.WriteTrailingBits()
	return w.Bytes()
}

// EmitPPS returns the RBSP of a minimal PPS describing f: CAVLC entropy
// coding, a single slice group, default QPs, and the deblocking-control
// presence flag f carries.
func EmitPPS(f Facts) []byte {
	w := bits.NewWriter(16)
	w.WriteUE(0)  // pic_parameter_set_id
	w.WriteUE(0)  // seq_parameter_set_id
	w.WriteBit(0) // entropy_coding_mode_flag (CAVLC)
	w.WriteBit(0) // bottom_field_pic_order_in_frame_present_flag
	w.WriteUE(0)  // num_slice_groups_minus1
	w.WriteUE(uint32(f.NumRefIdxL0DefaultMinus1))
	w.WriteUE(0)      // num_ref_idx_l1_default_active_minus1
	w.WriteBit(0)     // weighted_pred_flag
	w.WriteBits(0, 2) // weighted_bipred_idc
	w.WriteSE(0)      // pic_init_qp_minus26
	w.WriteSE(0)      // pic_init_qs_minus26
	w.WriteSE(0)      // chroma_qp_index_offset
	if f.DeblockingFilterControlPresent {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
	w.WriteBit(0) // constrained_intra_pred_flag
	w.WriteBit(0) // redundant_pic_cnt_present_flag
	w.WriteTrailingBits()
	return w.Bytes()
}
