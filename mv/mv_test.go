/*
NAME
  mv_test.go

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mv

import "testing"

func TestMedian3(t *testing.T) {
	cases := []struct{ a, b, c, want int }{
		{1, 2, 3, 2},
		{3, 2, 1, 2},
		{2, 3, 1, 2},
		{5, 5, 5, 5},
		{-4, 0, 4, 0},
		{0, 0, -64, 0},
		{0, -64, -64, -64},
		{64, 0, 0, 0},
	}
	for _, c := range cases {
		if got := Median3(c.a, c.b, c.c); got != c.want {
			t.Errorf("Median3(%d,%d,%d) = %d, want %d", c.a, c.b, c.c, got, c.want)
		}
	}
}

func TestPredictNoNeighborsIsZero(t *testing.T) {
	x, y := Predict(0, 0, 4, nil, Info{}, 0)
	if x != 0 || y != 0 {
		t.Errorf("Predict() = (%d,%d), want (0,0)", x, y)
	}
}

func TestPredictSingleNeighborUsesItWhenRefMatches(t *testing.T) {
	left := Info{MVX: 16, MVY: -4, RefIdx: 0, Available: true}
	x, y := Predict(1, 0, 4, nil, left, 0)
	if x != 16 || y != -4 {
		t.Errorf("Predict() = (%d,%d), want (16,-4)", x, y)
	}
}

func TestPredictSingleNeighborZeroedWhenRefMismatches(t *testing.T) {
	left := Info{MVX: 16, MVY: -4, RefIdx: 1, Available: true}
	x, y := Predict(1, 0, 4, nil, left, 0)
	if x != 0 || y != 0 {
		t.Errorf("Predict() = (%d,%d), want (0,0)", x, y)
	}
}

func TestPredictExactlyOneRefMatchUsesThatNeighborDirectly(t *testing.T) {
	above := []Info{
		{MVX: 100, MVY: 100, RefIdx: 5, Available: true}, // mismatched ref (B)
	}
	left := Info{MVX: 8, MVY: -8, RefIdx: 0, Available: true} // matched ref (A)
	x, y := Predict(0, 1, 1, above, left, 0)
	if x != 8 || y != -8 {
		t.Errorf("Predict() = (%d,%d), want (8,-8)", x, y)
	}
}

func TestPredictMedianOfThreeWhenMultipleOrZeroMatch(t *testing.T) {
	// A, B both ref-match (numMatch=2 -> median path), C unavailable.
	above := []Info{
		{MVX: 0, MVY: 64, RefIdx: 0, Available: true}, // B
	}
	left := Info{MVX: 0, MVY: 0, RefIdx: 0, Available: true} // A
	// C falls back to above-left, unavailable at mb_x=0.
	x, y := Predict(0, 1, 2, above, left, 0)
	if x != 0 {
		t.Errorf("pred_mvx = %d, want 0", x)
	}
	if y != 0 { // median(0, 64, 0) = 0
		t.Errorf("pred_mvy = %d, want 0 (median of 0,64,0)", y)
	}
}

func TestPredictAboveRightFallsBackToAboveLeft(t *testing.T) {
	above := []Info{
		{MVX: 6, MVY: 60, RefIdx: 0, Available: true}, // above-left, mb_x=1 column 0
		{MVX: 8, MVY: 80, RefIdx: 0, Available: true}, // above, column 1
	}
	// mb_x=1 is the rightmost column (mb_width=2), so C has no above-right and
	// falls back to above-left (column 0).
	left := Info{MVX: 4, MVY: 40, RefIdx: 0, Available: true}
	x, y := Predict(1, 1, 2, above, left, 0)
	// All three match, so the median runs over A=(4,40), B=(8,80),
	// C(fallback)=(6,60). Were C unavailable the median would be (4,40)
	// instead, so this distinguishes the fallback from no C at all.
	if x != 6 || y != 60 {
		t.Errorf("Predict() = (%d,%d), want (6,60)", x, y)
	}
}
