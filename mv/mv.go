/*
NAME
  mv.go

DESCRIPTION
  mv.go predicts the motion vector of a P_L0_16x16 macroblock from its
  left, above, and above-right (or above-left) neighbors, per the H.264
  median motion-vector prediction process.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mv predicts the motion vector of a macroblock from the
// macroblocks already coded to its left and above, matching the decoder's
// own derivation so the encoded mvd reproduces the intended motion vector
// bit-exactly on decode.
package mv

// Info describes one neighboring macroblock's coded motion vector and
// reference index, as seen by the predictor. The zero value represents an
// unavailable neighbor (outside the picture, or intra-coded).
type Info struct {
	MVX, MVY  int
	RefIdx    int
	Available bool
}

// Median3 returns the median of three integers, per H.264's Median
// function (spec 8.4.1.3.1): a + b + c - Min(a, Min(b, c)) - Max(a, Max(b, c)).
func Median3(a, b, c int) int {
	min, max := b, b
	if c < min {
		min = c
	}
	if c > max {
		max = c
	}
	if a < min {
		min = a
	}
	if a > max {
		max = a
	}
	return a + b + c - min - max
}

// Predict derives the predicted motion vector for the macroblock at
// (mbX, mbY) in a picture mbWidth macroblocks wide, given its above row's
// neighbor information (indexed by macroblock column), its left neighbor,
// and its own reference index curRefIdx.
//
// Neighbor selection follows 8.4.1.3: A is left, B is above, C is
// above-right, falling back to D (above-left) when C is unavailable. If
// exactly one neighbor is available, that neighbor's motion vector is used
// directly (zeroed if its reference index doesn't match curRefIdx). If
// exactly one available neighbor's reference index matches curRefIdx, that
// neighbor's motion vector is used directly regardless of the others.
// Otherwise the component-wise median of the (zero-filled where
// unavailable) neighbor motion vectors is used.
func Predict(mbX, mbY, mbWidth int, aboveRow []Info, left Info, curRefIdx int) (predMVX, predMVY int) {
	var a, b, c Info
	var aMatch, bMatch, cMatch bool

	if mbX > 0 && left.Available {
		a = left
		a.Available = true
		aMatch = a.RefIdx == curRefIdx
	}

	if mbY > 0 && aboveRow[mbX].Available {
		b = aboveRow[mbX]
		b.Available = true
		bMatch = b.RefIdx == curRefIdx
	}

	switch {
	case mbY > 0 && mbX+1 < mbWidth && aboveRow[mbX+1].Available:
		c = aboveRow[mbX+1]
		c.Available = true
		cMatch = c.RefIdx == curRefIdx
	case mbY > 0 && mbX > 0 && aboveRow[mbX-1].Available:
		c = aboveRow[mbX-1]
		c.Available = true
		cMatch = c.RefIdx == curRefIdx
	}

	numAvailable := boolToInt(a.Available) + boolToInt(b.Available) + boolToInt(c.Available)
	numMatch := boolToInt(aMatch) + boolToInt(bMatch) + boolToInt(cMatch)

	switch {
	case numAvailable == 0:
		return 0, 0

	case numAvailable == 1:
		switch {
		case a.Available:
			if aMatch {
				return a.MVX, a.MVY
			}
			return 0, 0
		case b.Available:
			if bMatch {
				return b.MVX, b.MVY
			}
			return 0, 0
		default:
			if cMatch {
				return c.MVX, c.MVY
			}
			return 0, 0
		}

	case numMatch == 1:
		switch {
		case aMatch:
			return a.MVX, a.MVY
		case bMatch:
			return b.MVX, b.MVY
		default:
			return c.MVX, c.MVY
		}

	default:
		ax, ay := zeroUnlessAvailable(a)
		bx, by := zeroUnlessAvailable(b)
		cx, cy := zeroUnlessAvailable(c)
		return Median3(ax, bx, cx), Median3(ay, by, cy)
	}
}

func zeroUnlessAvailable(n Info) (int, int) {
	if !n.Available {
		return 0, 0
	}
	return n.MVX, n.MVY
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
