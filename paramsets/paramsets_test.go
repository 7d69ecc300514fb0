/*
NAME
  paramsets_test.go

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

import (
	"testing"

	"github.com/ausocean/h264scroll/bits"
	"github.com/google/go-cmp/cmp"
)

// TestEmitParseSPSPPSRoundTrip emits the SPS and PPS for a chosen Facts
// value and parses both back, the same sequence locateRef runs against an
// external reference stream. The recovered Facts must match the emitted
// one field-for-field.
func TestEmitParseSPSPPSRoundTrip(t *testing.T) {
	// Log2MaxPicOrderCntLSB is 0: a pic_order_cnt_type 2 SPS carries no
	// picture-order LSB width.
	want := WriteFacts(640, 480, 2, 0)

	got, err := ParseSPS(EmitSPS(want, MaxWaypoints))
	if err != nil {
		t.Fatalf("ParseSPS() error = %v", err)
	}
	if err := ParsePPS(EmitPPS(want), &got); err != nil {
		t.Fatalf("ParsePPS() error = %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round-tripped Facts mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFactsAlwaysEnablesDeblockingControl(t *testing.T) {
	if got := WriteFacts(640, 480, 2, 4); !got.DeblockingFilterControlPresent {
		t.Errorf("DeblockingFilterControlPresent = %v, want true", got.DeblockingFilterControlPresent)
	}
	if got := WriteFacts(640, 480, 0, 6); !got.DeblockingFilterControlPresent {
		t.Errorf("DeblockingFilterControlPresent = %v, want true (pic_order_cnt_type 0)", got.DeblockingFilterControlPresent)
	}
}

func TestParseSPSPicOrderCntType0(t *testing.T) {
	w := bits.NewWriter(16)
	w.WriteBits(66, 8) // profile_idc (Baseline, not in the high-profile set)
	w.WriteBits(0xC0, 8)
	w.WriteBits(40, 8)
	w.WriteUE(0) // seq_parameter_set_id
	w.WriteUE(0) // log2_max_frame_num_minus4 -> 4
	w.WriteUE(0) // pic_order_cnt_type = 0
	w.WriteUE(2) // log2_max_pic_order_cnt_lsb_minus4 -> 6
	w.WriteUE(3) // max_num_ref_frames
	w.WriteBit(0)
	w.WriteUE(19) // pic_width_in_mbs_minus1 -> 20 MBs -> 320px
	w.WriteUE(14) // pic_height_in_map_units_minus1 -> 15 MBs -> 240px
	w.WriteBit(1) // frame_mbs_only_flag
	w.WriteBit(1)
	w.WriteBit(0)
	w.WriteBit(0)
	w.WriteTrailingBits()

	got, err := ParseSPS(w.Bytes())
	if err != nil {
		t.Fatalf("ParseSPS() error = %v", err)
	}
	if got.Width != 320 || got.Height != 240 {
		t.Errorf("dims = %dx%d, want 320x240", got.Width, got.Height)
	}
	if got.PicOrderCntType != 0 || got.Log2MaxPicOrderCntLSB != 6 {
		t.Errorf("PicOrderCntType=%d Log2MaxPicOrderCntLSB=%d, want 0,6", got.PicOrderCntType, got.Log2MaxPicOrderCntLSB)
	}
}

func TestParseSPSRejectsPicOrderCntType1(t *testing.T) {
	w := bits.NewWriter(16)
	w.WriteBits(66, 8)
	w.WriteBits(0xC0, 8)
	w.WriteBits(40, 8)
	w.WriteUE(0)
	w.WriteUE(0)
	w.WriteUE(1) // pic_order_cnt_type = 1
	w.WriteTrailingBits()

	if _, err := ParseSPS(w.Bytes()); err == nil {
		t.Fatal("ParseSPS() with pic_order_cnt_type 1: want error, got nil")
	}
}

func TestParseSPSRejectsHighProfileScalingMatrix(t *testing.T) {
	w := bits.NewWriter(16)
	w.WriteBits(100, 8) // High profile.
	w.WriteBits(0xC0, 8)
	w.WriteBits(40, 8)
	w.WriteUE(0)  // seq_parameter_set_id
	w.WriteUE(1)  // chroma_format_idc
	w.WriteUE(0)  // bit_depth_luma_minus8
	w.WriteUE(0)  // bit_depth_chroma_minus8
	w.WriteBit(0) // qpprime_y_zero_transform_bypass_flag
	w.WriteBit(1) // seq_scaling_matrix_present_flag
	w.WriteTrailingBits()

	if _, err := ParseSPS(w.Bytes()); err == nil {
		t.Fatal("ParseSPS() with a scaling matrix: want error, got nil")
	}
}

func TestParsePPSRejectsMultipleSliceGroups(t *testing.T) {
	w := bits.NewWriter(8)
	w.WriteUE(0) // pic_parameter_set_id
	w.WriteUE(0) // seq_parameter_set_id
	w.WriteBit(0)
	w.WriteBit(0)
	w.WriteUE(1) // num_slice_groups_minus1 = 1 -> two slice groups
	w.WriteTrailingBits()

	var f Facts
	if err := ParsePPS(w.Bytes(), &f); err == nil {
		t.Fatal("ParsePPS() with multiple slice groups: want error, got nil")
	}
}
