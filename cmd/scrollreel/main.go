/*
NAME
  scrollreel

DESCRIPTION
  scrollreel is a command-line tool that synthesizes a vertically-scrolling
  H.264 elementary stream from two still reference pictures, oscillating the
  scroll offset back and forth across the picture height.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements the scrollreel command.
package main

import (
	"flag"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/h264scroll/nal"
	"github.com/ausocean/h264scroll/scroll"
	"github.com/ausocean/utils/logging"
)

// Logging configuration, matching this project's other command-line tools.
const (
	logPath      = "scrollreel.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 3
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

const pkg = "scrollreel: "

func main() {
	refA := flag.String("ref-a", "", "path to the A reference Annex-B stream")
	refB := flag.String("ref-b", "", "path to the B reference Annex-B stream")
	numFrames := flag.Int("frames", 250, "number of P-frames to synthesize")
	flag.IntVar(numFrames, "n", 250, "shorthand for -frames")
	speed := flag.Int("speed", 4, "pixels of scroll offset advanced per frame")
	flag.IntVar(speed, "s", 4, "shorthand for -speed")
	output := flag.String("output", "output.h264", "output Annex-B file path")
	flag.StringVar(output, "o", "output.h264", "shorthand for -output")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	if *refA == "" || *refB == "" {
		log.Fatal(pkg + "both -ref-a and -ref-b are required")
	}
	if *numFrames < 0 {
		log.Fatal(pkg+"-frames must not be negative", "frames", *numFrames)
	}
	if *speed <= 0 {
		log.Fatal(pkg+"-speed must be positive", "speed", *speed)
	}

	log.Info("loading reference streams", "refA", *refA, "refB", *refB)
	dataA, err := os.ReadFile(*refA)
	if err != nil {
		log.Fatal(pkg+"could not read ref-a", "error", err.Error())
	}
	dataB, err := os.ReadFile(*refB)
	if err != nil {
		log.Fatal(pkg+"could not read ref-b", "error", err.Error())
	}

	w := nal.NewWriter(len(dataA) + len(dataB) + (*numFrames)*64)
	facts, synth, err := scroll.BuildHeader(w, dataA, dataB, log)
	if err != nil {
		log.Fatal(pkg+"could not build header", "error", err.Error())
	}
	log.Info("header written", "width", facts.Width, "height", facts.Height)

	offsets := triangleSchedule(facts.Height, *numFrames, *speed)
	if err := scroll.WriteSequence(w, synth, offsets); err != nil {
		log.Fatal(pkg+"could not synthesize scroll sequence", "error", err.Error())
	}
	log.Info("synthesized scroll sequence", "frames", *numFrames)

	if err := os.WriteFile(*output, w.Bytes(), 0o644); err != nil {
		log.Fatal(pkg+"could not write output", "error", err.Error())
	}
	log.Info("wrote output", "path", *output, "bytes", len(w.Bytes()))
}

// triangleSchedule returns the sequence of n scroll offsets produced by
// bouncing back and forth between 0 and maxOffset at the given speed (pixels
// per frame), reflecting at each end.
func triangleSchedule(maxOffset, n, speed int) []int {
	cycleLen := maxOffset * 2
	offsets := make([]int, n)
	for i := 0; i < n; i++ {
		cyclePos := (i * speed) % cycleLen
		if cyclePos < 0 {
			cyclePos += cycleLen
		}
		if cyclePos <= maxOffset {
			offsets[i] = cyclePos
		} else {
			offsets[i] = cycleLen - cyclePos
		}
	}
	return offsets
}
