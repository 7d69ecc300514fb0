/*
NAME
  nal.go

DESCRIPTION
  nal.go provides Annex-B NAL unit framing: emulation-prevention encoding and
  decoding of RBSP payloads, and a Writer/Splitter for assembling and parsing
  a byte-stream of framed NAL units.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package nal provides Annex-B byte-stream framing for H.264 NAL units:
// emulation-prevention encapsulation, long start-code framing, and a writer
// and splitter that operate on whole elementary streams.
package nal

import "github.com/pkg/errors"

// NAL unit types used by this module, per Table 7-1 of ITU-T H.264.
const (
	TypeNonIDR = 1
	TypeIDR    = 5
	TypeSPS    = 7
	TypePPS    = 8
)

// Reference importances (nal_ref_idc) used by this module.
const (
	RefIdcNone     = 0 // Picture is never used as a reference.
	RefIdcWaypoint = 2 // Intermediate long-term reference (waypoint).
	RefIdcHighest  = 3 // SPS, PPS, and the two seed long-term references.
)

var startCode = [4]byte{0x00, 0x00, 0x00, 0x01}

// EscapeRBSP converts an RBSP payload to its encapsulated (EBSP) form by
// inserting a 0x03 emulation-prevention byte whenever two or more
// consecutive zero bytes would otherwise be followed by a byte <= 0x03. The
// raw byte sequences 00 00 00, 00 00 01, 00 00 02 and 00 00 03 never appear
// verbatim in the result.
func EscapeRBSP(rbsp []byte) []byte {
	out := make([]byte, 0, len(rbsp)+len(rbsp)/8+4)
	zeroRun := 0
	for _, b := range rbsp {
		if zeroRun >= 2 && b <= 0x03 {
			out = append(out, 0x03)
			zeroRun = 0
		}
		out = append(out, b)
		if b == 0x00 {
			zeroRun++
		} else {
			zeroRun = 0
		}
	}
	return out
}

// UnescapeEBSP is the inverse of EscapeRBSP: it removes emulation-prevention
// 0x03 bytes from an encapsulated payload, returning the original RBSP.
func UnescapeEBSP(ebsp []byte) []byte {
	out := make([]byte, 0, len(ebsp))
	zeroRun := 0
	for i := 0; i < len(ebsp); i++ {
		b := ebsp[i]
		if zeroRun >= 2 && b == 0x03 && i+1 < len(ebsp) && ebsp[i+1] <= 0x03 {
			zeroRun = 0
			continue
		}
		out = append(out, b)
		if b == 0x00 {
			zeroRun++
		} else {
			zeroRun = 0
		}
	}
	return out
}

// Writer appends framed NAL units (long start code, header byte,
// emulation-prevented payload) to an output buffer.
//
// The zero value is not usable; construct with NewWriter.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with its output buffer pre-allocated to
// capacity bytes.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// WriteUnit appends one framed NAL unit with the given reference importance
// (nal_ref_idc, 0..3) and NAL unit type (1..31), encapsulating rbsp with
// emulation prevention. It returns the number of bytes appended.
func (w *Writer) WriteUnit(refIdc, nalType int, rbsp []byte) int {
	start := len(w.buf)
	w.buf = append(w.buf, startCode[:]...)
	header := byte((refIdc&0x03)<<5) | byte(nalType&0x1f)
	w.buf = append(w.buf, header)
	w.buf = append(w.buf, EscapeRBSP(rbsp)...)
	return len(w.buf) - start
}

// Bytes returns the assembled Annex-B byte-stream. The returned slice
// aliases the Writer's internal buffer and must not be retained across
// further writes.
func (w *Writer) Bytes() []byte { return w.buf }

// Unit is one parsed NAL unit from an Annex-B byte-stream: its reference
// importance, type, and de-escaped RBSP payload.
type Unit struct {
	RefIdc int
	Type   int
	RBSP   []byte
}

// errNoStartCode is returned by Split when data contains no NAL start code.
var errNoStartCode = errors.New("nal: no start code found")

// Split parses an Annex-B byte-stream into its constituent NAL units,
// de-escaping each payload. Both 3-byte (00 00 01) and 4-byte (00 00 00 01)
// start codes are recognised, matching encoders that mix the two forms.
func Split(data []byte) ([]Unit, error) {
	starts := findStartCodes(data)
	if len(starts) == 0 {
		return nil, errNoStartCode
	}
	units := make([]Unit, 0, len(starts))
	for i, s := range starts {
		end := len(data)
		if i+1 < len(starts) {
			end = starts[i+1].scPos
		}
		payload := data[s.hdrPos:end]
		// Trim trailing zero bytes that belong to the next start code's
		// leading padding rather than this NAL's payload.
		for len(payload) > 1 && payload[len(payload)-1] == 0x00 {
			payload = payload[:len(payload)-1]
		}
		if len(payload) == 0 {
			continue
		}
		header := payload[0]
		units = append(units, Unit{
			RefIdc: int((header >> 5) & 0x03),
			Type:   int(header & 0x1f),
			RBSP:   UnescapeEBSP(payload[1:]),
		})
	}
	return units, nil
}

type startPos struct {
	scPos  int // Offset of the 00 00 01 (or 00 00 00 01) sequence.
	hdrPos int // Offset of the NAL header byte immediately following it.
}

// findStartCodes locates every Annex-B start code in data, returning the
// position of the start code itself and of the header byte that follows it.
func findStartCodes(data []byte) []startPos {
	var out []startPos
	for i := 0; i+2 < len(data); {
		if data[i] != 0x00 || data[i+1] != 0x00 {
			i++
			continue
		}
		if i+3 < len(data) && data[i+2] == 0x00 && data[i+3] == 0x01 {
			out = append(out, startPos{scPos: i, hdrPos: i + 4})
			i += 4
			continue
		}
		if data[i+2] == 0x01 {
			out = append(out, startPos{scPos: i, hdrPos: i + 3})
			i += 3
			continue
		}
		i++
	}
	return out
}
