/*
NAME
  parse.go

DESCRIPTION
  parse.go recovers parameter-set facts from an external encoder's SPS and
  PPS, so the slice-header rewriter knows how to parse that encoder's slice
  headers.

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
	"github.com/ausocean/h264scroll/bits"
	"github.com/pkg/errors"
)

// High-profile values of profile_idc that carry chroma_format_idc and
// scaling-list syntax in the SPS. This system only supports Baseline-style
// streams, but tolerates these profiles as long as they use 4:2:0 chroma and
// don't carry a scaling matrix.
var highProfiles = map[int]bool{
	100: true, 110: true, 122: true, 244: true, 44: true,
	83: true, 86: true, 118: true, 128: true, 138: true, 139: true, 134: true,
}

// ParseSPS recovers picture dimensions and the frame_num / picture-order
// syntax widths from an external encoder's SPS RBSP. It returns a domain
// error for inputs this system cannot handle: a high-profile chroma format
// other than 4:2:0, a high-profile scaling matrix, or a pic_order_cnt_type
// other than 0 or 2.
func ParseSPS(rbsp []byte) (Facts, error) {
	r := bits.NewReader(rbsp)

	profileIDC := int(r.ReadBits(8))
	r.ReadBits(8) // constraint flags + reserved zero bits.
	r.ReadBits(8) // level_idc
	r.ReadUE()    // seq_parameter_set_id

	if highProfiles[profileIDC] {
		chromaFormatIDC := r.ReadUE()
		if chromaFormatIDC == 3 {
			r.ReadBit() // separate_colour_plane_flag
		}
		if chromaFormatIDC != 1 {
			return Facts{}, errors.Errorf("paramsets: chroma_format_idc %d is unsupported, only 4:2:0", chromaFormatIDC)
		}
		r.ReadUE()  // bit_depth_luma_minus8
		r.ReadUE()  // bit_depth_chroma_minus8
		r.ReadBit() // qpprime_y_zero_transform_bypass_flag
		if r.ReadBit() != 0 {
			return Facts{}, errors.New("paramsets: SPS carries a scaling matrix, unsupported")
		}
	}

	var f Facts
	f.Log2MaxFrameNum = int(r.ReadUE()) + 4
	f.PicOrderCntType = int(r.ReadUE())
	switch f.PicOrderCntType {
	case 0:
		f.Log2MaxPicOrderCntLSB = int(r.ReadUE()) + 4
	case 1:
		return Facts{}, errors.New("paramsets: pic_order_cnt_type 1 is unsupported")
	case 2:
		// No additional syntax.
	default:
		return Facts{}, errors.Errorf("paramsets: invalid pic_order_cnt_type %d", f.PicOrderCntType)
	}

	r.ReadUE()  // max_num_ref_frames
	r.ReadBit() // gaps_in_frame_num_value_allowed_flag

	mbWidth := int(r.ReadUE()) + 1
	mapUnitsHeight := int(r.ReadUE()) + 1
	frameMBSOnly := r.ReadBit()
	mbHeight := mapUnitsHeight
	if frameMBSOnly == 0 {
		r.ReadBit() // mb_adaptive_frame_field_flag
		mbHeight *= 2
	}

	f.Width = mbWidth * 16
	f.Height = mbHeight * 16

	if err := f.Validate(); err != nil {
		return Facts{}, err
	}
	return f, nil
}

// ParsePPS reads num_ref_idx_l0_default_active_minus1 and the
// deblocking-filter-control presence flag from an external encoder's PPS
// RBSP, filling them into f. It returns a domain error if the PPS names
// more than one slice group, which this system cannot interpret.
func ParsePPS(rbsp []byte, f *Facts) error {
	r := bits.NewReader(rbsp)

	r.ReadUE()  // pic_parameter_set_id
	r.ReadUE()  // seq_parameter_set_id
	r.ReadBit() // entropy_coding_mode_flag
	r.ReadBit() // bottom_field_pic_order_in_frame_present_flag

	if r.ReadUE() != 0 {
		return errors.New("paramsets: PPS names more than one slice group, unsupported")
	}

	f.NumRefIdxL0DefaultMinus1 = int(r.ReadUE())
	r.ReadUE()    // num_ref_idx_l1_default_active_minus1
	r.ReadBit()   // weighted_pred_flag
	r.ReadBits(2) // weighted_bipred_idc
	r.ReadSE()    // pic_init_qp_minus26
	r.ReadSE()    // pic_init_qs_minus26
	r.ReadSE()    // chroma_qp_index_offset

	f.DeblockingFilterControlPresent = r.ReadBit() != 0
	return nil
}
