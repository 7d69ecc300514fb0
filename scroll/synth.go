/*
NAME
  synth.go

DESCRIPTION
  synth.go synthesizes scroll P-frames: the picture's macroblock rows are
  split into an A-region, sourced directly from the scrolled-off top of the composition,
  and a B-region, sourced from the picture scrolling in underneath, each
  referencing either its seed picture or the nearest usable waypoint.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package scroll synthesizes a vertically-scrolling H.264 sequence from two
// seed pictures, A and B, by emitting P-frames whose macroblocks reference
// A or B (or an intermediate waypoint) with a motion vector derived purely
// from the requested scroll offset, never by searching the seed pictures'
// pixels.
package scroll

import (
	"github.com/ausocean/h264scroll/bits"
	"github.com/ausocean/h264scroll/mv"
	"github.com/ausocean/h264scroll/nal"
	"github.com/ausocean/h264scroll/paramsets"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// errWaypointTableFull is returned when a scroll offset requires minting a
// new waypoint but the table already holds paramsets.MaxWaypoints entries.
var errWaypointTableFull = errors.New("scroll: waypoint table full")

// refA and refB are the reference-picture-list indices of the two seed
// pictures, always present regardless of how many waypoints are active.
const (
	refA = 0
	refB = 1
)

// Synthesizer emits the scroll sequence's P-frames and intermediate
// waypoints for one fixed picture geometry.
type Synthesizer struct {
	facts     paramsets.Facts
	frameNum  int
	waypoints waypointTable
	log       logging.Logger // May be nil.
}

// NewSynthesizer returns a Synthesizer that will emit frames conforming to
// facts, starting at frame_num 2 (0 and 1 are reserved for the A and B seed
// pictures). log may be nil, in which case the synthesizer emits no logging.
func NewSynthesizer(facts paramsets.Facts, log logging.Logger) *Synthesizer {
	return &Synthesizer{facts: facts, frameNum: 2, log: log}
}

// region describes one macroblock row's source: which reference index to
// use and the vertical motion vector, in quarter-pel units, that places the
// requested row of the source picture at this row of the output.
type region struct {
	refIdx  int
	mvYQpel int32
}

// WriteScrollFrame writes the P-frame that composites the scroll at
// offsetPx, minting and emitting a new waypoint into w first if offsetPx
// requires one. offsetPx is in whole pixels, measured from the top of A. It
// returns errWaypointTableFull if offsetPx requires a new waypoint and the
// table is already at its bound.
func (s *Synthesizer) WriteScrollFrame(w *nal.Writer, offsetPx int) error {
	if s.waypoints.needsMint(offsetPx) {
		if err := s.mintWaypoint(w, offsetPx); err != nil {
			return err
		}
	}

	height := s.facts.Height
	mbWidth := s.facts.MBWidth()
	mbHeight := s.facts.MBHeight()

	// boundaryRow is the first macroblock row sourced from the B region:
	// rows above it come from A, scrolled down by offsetPx; rows at or
	// below it come from B, scrolled up by the remaining distance.
	boundaryRow := (height - offsetPx) / 16

	aRegion := s.resolveRegion(offsetPx, refA)
	bRegion := s.resolveRegion(offsetPx-height, refB)

	bw := bits.NewWriter(mbWidth*mbHeight + 64)
	writePSliceHeader(bw, s.facts, s.frameNum, s.waypoints.entries, false, 0)

	above := make([]mv.Info, mbWidth)
	for row := 0; row < mbHeight; row++ {
		r := aRegion
		if row >= boundaryRow {
			r = bRegion
		}
		var left mv.Info
		for col := 0; col < mbWidth; col++ {
			predX, predY := mv.Predict(col, row, mbWidth, above, left, r.refIdx)
			mvdX := int32(0) - int32(predX)
			mvdY := r.mvYQpel - int32(predY)

			bw.WriteUE(0) // skip_run = 0: this macroblock is always explicitly coded.
			writeP16x16(bw, 2+len(s.waypoints.entries), r.refIdx, mvdX, mvdY)

			cur := mv.Info{MVX: 0, MVY: int(r.mvYQpel), RefIdx: r.refIdx, Available: true}
			above[col] = cur
			left = cur
		}
	}
	bw.WriteTrailingBits()

	w.WriteUnit(nal.RefIdcNone, nal.TypeNonIDR, bw.Bytes())
	if s.log != nil {
		s.log.Debug("wrote scroll frame", "frame_num", s.frameNum, "offset_px", offsetPx)
	}
	s.frameNum++
	return nil
}

// resolveRegion picks the reference and motion vector for a region whose
// direct source row offset from its own seed picture is deltaPx (positive:
// rows below the seed's top; for the B region this is offsetPx-height,
// matching the B-direct formula mv_y = offset - height). If the direct
// vector's magnitude would exceed the hardware limit, the nearest usable
// waypoint is substituted, keeping the same notion of "offset from this
// waypoint's own capture point". If no registered waypoint is usable, the
// direct vector is returned even though it exceeds the limit.
func (s *Synthesizer) resolveRegion(deltaPx int, seedRefIdx int) region {
	if deltaPx >= -mvLimitPx && deltaPx <= mvLimitPx {
		return region{refIdx: seedRefIdx, mvYQpel: int32(deltaPx) * 4}
	}

	// deltaPx here is expressed relative to the seed's own top; a waypoint
	// is itself a capture of the full scroll composition at its OffsetPx,
	// so the vector from a waypoint to this row is offsetFromSeed - wp.OffsetPx,
	// where offsetFromSeed is the absolute scroll offset this region
	// corresponds to. For the A region that's deltaPx itself; for the B
	// region it's deltaPx+height (recovering the absolute offset).
	absOffset := deltaPx
	if seedRefIdx == refB {
		absOffset = deltaPx + s.facts.Height
	}

	if wp, idx, ok := s.waypoints.best(absOffset); ok {
		return region{refIdx: waypointRefIdx(idx), mvYQpel: int32(absOffset-wp.OffsetPx) * 4}
	}
	return region{refIdx: seedRefIdx, mvYQpel: int32(deltaPx) * 4}
}

// waypointRefIdx converts a waypointTable entry index into its reference
// list position: waypoints are always listed immediately after A and B, in
// the order they were minted.
func waypointRefIdx(entryIdx int) int {
	return 2 + entryIdx
}

// mintWaypoint writes the waypoint frame that captures the scroll
// composition at offsetPx, registers it in the table, and marks it
// long-term via the MMCO sequence 4, k+1, 6, k, 0. It returns
// errWaypointTableFull without writing anything if the table is already at
// its paramsets.MaxWaypoints bound.
func (s *Synthesizer) mintWaypoint(w *nal.Writer, offsetPx int) error {
	if s.waypoints.full() {
		return errWaypointTableFull
	}
	longTermIdx := s.waypoints.nextLongTermIdx()

	height := s.facts.Height
	mbWidth := s.facts.MBWidth()
	mbHeight := s.facts.MBHeight()
	boundaryRow := (height - offsetPx) / 16

	aRegion := s.resolveRegion(offsetPx, refA)
	bRegion := s.resolveRegion(offsetPx-height, refB)

	bw := bits.NewWriter(mbWidth*mbHeight + 64)
	writePSliceHeader(bw, s.facts, s.frameNum, s.waypoints.entries, true, longTermIdx)

	above := make([]mv.Info, mbWidth)
	for row := 0; row < mbHeight; row++ {
		r := aRegion
		if row >= boundaryRow {
			r = bRegion
		}
		var left mv.Info
		for col := 0; col < mbWidth; col++ {
			predX, predY := mv.Predict(col, row, mbWidth, above, left, r.refIdx)
			mvdX := int32(0) - int32(predX)
			mvdY := r.mvYQpel - int32(predY)

			bw.WriteUE(0)
			writeP16x16(bw, 2+len(s.waypoints.entries), r.refIdx, mvdX, mvdY)

			cur := mv.Info{MVX: 0, MVY: int(r.mvYQpel), RefIdx: r.refIdx, Available: true}
			above[col] = cur
			left = cur
		}
	}
	bw.WriteTrailingBits()

	w.WriteUnit(nal.RefIdcWaypoint, nal.TypeNonIDR, bw.Bytes())
	s.waypoints.register(offsetPx, longTermIdx)
	if s.log != nil {
		s.log.Info("minted waypoint", "offset_px", offsetPx, "long_term_idx", longTermIdx)
	}
	s.frameNum++
	return nil
}
