/*
NAME
  orchestrator.go

DESCRIPTION
  orchestrator.go assembles the complete scroll sequence: it locates the SPS,
  PPS, and IDR units in each of two reference Annex-B streams, rewrites them
  into this system's long-term references, and drives the Synthesizer across
  a caller-supplied schedule of scroll offsets.

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
	"github.com/ausocean/h264scroll/nal"
	"github.com/ausocean/h264scroll/paramsets"
	"github.com/ausocean/h264scroll/slicehdr"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// refSource holds one reference file's located parameter sets and IDR
// payload, before rewriting.
type refSource struct {
	facts paramsets.Facts
	idr   []byte
}

// locateRef parses data for its SPS, PPS and first IDR unit, returning the
// parse-side Facts and the IDR slice's RBSP. It is a domain error for any of
// the three to be missing.
func locateRef(data []byte) (refSource, error) {
	units, err := nal.Split(data)
	if err != nil {
		return refSource{}, errors.Wrap(err, "scroll: splitting reference stream")
	}

	var (
		facts  paramsets.Facts
		haveF  bool
		havePP bool
		idr    []byte
	)
	for _, u := range units {
		switch u.Type {
		case nal.TypeSPS:
			f, err := paramsets.ParseSPS(u.RBSP)
			if err != nil {
				return refSource{}, errors.Wrap(err, "scroll: parsing reference SPS")
			}
			facts = f
			haveF = true
		case nal.TypePPS:
			if !haveF {
				return refSource{}, errors.New("scroll: PPS precedes SPS in reference stream")
			}
			if err := paramsets.ParsePPS(u.RBSP, &facts); err != nil {
				return refSource{}, errors.Wrap(err, "scroll: parsing reference PPS")
			}
			havePP = true
		case nal.TypeIDR:
			if idr == nil {
				idr = u.RBSP
			}
		}
	}

	if !haveF || !havePP {
		return refSource{}, errors.New("scroll: reference stream missing SPS or PPS")
	}
	if idr == nil {
		return refSource{}, errors.New("scroll: reference stream missing an IDR slice")
	}
	return refSource{facts: facts, idr: idr}, nil
}

// BuildHeader parses refA and refB (each a complete Annex-B stream
// containing at least an SPS, a PPS and one IDR slice), verifies they
// describe the same picture dimensions, and writes the SPS, PPS, rewritten
// A (IDR long-term reference) and rewritten B (non-IDR I-slice long-term
// reference) to w, in that order. It returns the write Facts and a ready
// Synthesizer for emitting the subsequent scroll sequence. log may be nil.
func BuildHeader(w *nal.Writer, refA, refB []byte, log logging.Logger) (paramsets.Facts, *Synthesizer, error) {
	a, err := locateRef(refA)
	if err != nil {
		return paramsets.Facts{}, nil, errors.Wrap(err, "scroll: reference A")
	}
	b, err := locateRef(refB)
	if err != nil {
		return paramsets.Facts{}, nil, errors.Wrap(err, "scroll: reference B")
	}
	if a.facts.Width != b.facts.Width || a.facts.Height != b.facts.Height {
		return paramsets.Facts{}, nil, errors.Errorf(
			"scroll: reference dimensions mismatch: A is %dx%d, B is %dx%d",
			a.facts.Width, a.facts.Height, b.facts.Width, b.facts.Height)
	}

	writeFacts := paramsets.WriteFacts(
		a.facts.Width, a.facts.Height,
		a.facts.PicOrderCntType, a.facts.Log2MaxPicOrderCntLSB,
	)
	if err := writeFacts.Validate(); err != nil {
		return paramsets.Facts{}, nil, errors.Wrap(err, "scroll: reference dimensions")
	}
	if log != nil {
		log.Debug("parsed reference streams", "width", writeFacts.Width, "height", writeFacts.Height,
			"pic_order_cnt_type", writeFacts.PicOrderCntType)
	}

	w.WriteUnit(nal.RefIdcHighest, nal.TypeSPS, paramsets.EmitSPS(writeFacts, paramsets.MaxWaypoints))
	w.WriteUnit(nal.RefIdcHighest, nal.TypePPS, paramsets.EmitPPS(writeFacts))

	rewrittenA, err := slicehdr.RewriteIDR(a.idr, writeFacts, a.facts)
	if err != nil {
		return paramsets.Facts{}, nil, errors.Wrap(err, "scroll: rewriting reference A")
	}
	w.WriteUnit(nal.RefIdcHighest, nal.TypeIDR, rewrittenA)

	rewrittenB, err := slicehdr.RewriteAsNonIDR(b.idr, writeFacts, b.facts, 1)
	if err != nil {
		return paramsets.Facts{}, nil, errors.Wrap(err, "scroll: rewriting reference B")
	}
	w.WriteUnit(nal.RefIdcHighest, nal.TypeNonIDR, rewrittenB)
	if log != nil {
		log.Info("header written", "nal_count", 4)
	}

	return writeFacts, NewSynthesizer(writeFacts, log), nil
}

// WriteSequence drives synth across offsets in order, appending every
// minted waypoint and scroll P-frame to w. It returns the first error
// encountered (for example errWaypointTableFull), stopping immediately
// rather than continuing to write a partial, invalid sequence.
func WriteSequence(w *nal.Writer, synth *Synthesizer, offsets []int) error {
	for _, offset := range offsets {
		if err := synth.WriteScrollFrame(w, offset); err != nil {
			return errors.Wrapf(err, "scroll: writing frame at offset %d", offset)
		}
	}
	return nil
}
