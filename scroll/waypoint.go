/*
NAME
  waypoint.go

DESCRIPTION
  waypoint.go maintains the bounded table of long-term references that let
  the synthesizer keep vertical motion vectors within a hardware decoder's
  magnitude limit over an arbitrarily long scroll.

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

import "github.com/ausocean/h264scroll/paramsets"

// mvLimitPx is the effective vertical motion-vector magnitude limit imposed
// by the hardware decoders this system targets.
const mvLimitPx = 496

// Waypoint is one intermediate long-term reference: a scroll composition
// captured at OffsetPx and registered under LongTermIdx, which subsequent
// frames can reference in place of A or B to keep their own vectors small.
type Waypoint struct {
	OffsetPx    int
	LongTermIdx int
}

// waypointTable holds the scroll synthesizer's bounded list of waypoints,
// in the order they were minted.
type waypointTable struct {
	entries []Waypoint
}

// full reports whether the table already holds paramsets.MaxWaypoints
// entries.
func (t *waypointTable) full() bool {
	return len(t.entries) >= paramsets.MaxWaypoints
}

// nextLongTermIdx returns the long-term index the next minted waypoint
// would be assigned: 2 plus the number of waypoints already registered,
// since 0 and 1 are reserved for A and B.
func (t *waypointTable) nextLongTermIdx() int {
	return 2 + len(t.entries)
}

// at reports whether a waypoint already exists at exactly offsetPx.
func (t *waypointTable) at(offsetPx int) bool {
	for _, w := range t.entries {
		if w.OffsetPx == offsetPx {
			return true
		}
	}
	return false
}

// register appends a newly-minted waypoint to the table.
func (t *waypointTable) register(offsetPx, longTermIdx int) {
	t.entries = append(t.entries, Waypoint{OffsetPx: offsetPx, LongTermIdx: longTermIdx})
}

// needsMint reports whether offsetPx requires minting a new waypoint
// before the frame at that offset can be written: offsetPx must be a
// positive multiple of the hardware MV limit, and no waypoint may already
// exist at that exact offset.
func (t *waypointTable) needsMint(offsetPx int) bool {
	if offsetPx <= 0 || offsetPx%mvLimitPx != 0 {
		return false
	}
	return !t.at(offsetPx)
}

// best returns the waypoint whose anchor offset is closest to offsetPx
// without exceeding it, such that the resulting vector magnitude stays
// within mvLimitPx. A waypoint captures the whole frame's composition at
// its own offset, so the same selection applies whether the caller is
// resolving a vector for the A region or the B region. ok is false if no
// such waypoint exists, meaning the caller should reference A or B
// directly.
func (t *waypointTable) best(offsetPx int) (wp Waypoint, idx int, ok bool) {
	bestOffset := -1
	bestIdx := -1
	for i, w := range t.entries {
		delta := offsetPx - w.OffsetPx
		if delta < 0 {
			delta = -delta
		}
		if delta > mvLimitPx {
			continue
		}
		if w.OffsetPx <= offsetPx && w.OffsetPx > bestOffset {
			bestOffset = w.OffsetPx
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return Waypoint{}, -1, false
	}
	return t.entries[bestIdx], bestIdx, true
}
