// SPDX-License-Identifier: EPL-2.0

// Command dsdplay plays a DSF file into a raw frame pipe or a DoP PCM file.
//
// Usage:
//
//	dsdplay [-mode native|dop] [-o output] <file.dsf>
//
// Without -o the frames are written to stdout, ready to be piped into a
// player that takes DSD_U32_BE (native) or S24_3BE (dop) input. An output
// ending in .wav, .aif or .aiff is written as a 24-bit PCM file and needs
// DoP mode, which is also the default for those extensions.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ik5/dsdpbx"
	"github.com/ik5/dsdpbx/audio"
	"github.com/ik5/dsdpbx/playback"
	"github.com/ik5/dsdpbx/sink"
)

var errModeNeedsDoP = errors.New("PCM file output needs -mode dop")

type outputFile interface {
	io.WriteSeeker
	io.Closer
}

// createOutput opens the -o file; replaced in tests.
var createOutput = func(path string) (outputFile, error) {
	return os.Create(path)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	logger := log.New(stderr, "dsdplay: ", 0)

	fs := flag.NewFlagSet("dsdplay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modeName := fs.String("mode", "", "frame format: native or dop (default native, dop for PCM files)")
	outPath := fs.String("o", "", "output file, stdout when empty or -")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: dsdplay [-mode native|dop] [-o output] <file.dsf>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	inPath := fs.Arg(0)

	pcm := isPCMFile(*outPath)

	mode := playback.ModeNative
	if pcm {
		mode = playback.ModeDoP
	}
	if *modeName != "" {
		m, err := playback.ParseMode(*modeName)
		if err != nil {
			logger.Println(err)
			return 1
		}
		mode = m
	}
	if pcm && mode != playback.ModeDoP {
		logger.Println(errModeNeedsDoP)
		return 1
	}

	dec, err := dsdpbx.DecoderFor(inPath)
	if err != nil {
		logger.Println(err)
		return 1
	}

	in, err := os.Open(inPath)
	if err != nil {
		logger.Println(err)
		return 1
	}
	defer in.Close()

	stream, err := dec.Decode(in)
	if err != nil {
		logger.Printf("%s: %v", inPath, err)
		return 1
	}

	fmt.Fprintf(stderr, "%s: %s\n", filepath.Base(inPath), describe(stream))

	out, closeOut, err := openSink(*outPath, stdout, pcm)
	if err != nil {
		_ = stream.Close()
		logger.Println(err)
		return 1
	}

	p := playback.New(stream, out, playback.Config{Mode: mode})
	runErr := p.Run()
	closeErr := closeOut()
	if runErr != nil {
		logger.Printf("playback %s: %v", p.State(), runErr)
		return 1
	}
	if closeErr != nil {
		logger.Printf("closing output: %v", closeErr)
		return 1
	}

	cfg := p.Negotiated()
	stats := p.Stats()
	fmt.Fprintf(stderr, "%s at %d Hz: %d frames, %d bytes per channel\n",
		cfg.Format, cfg.SampleRate, stats.Frames, stats.BytesPerChannel)

	return 0
}

// isPCMFile reports whether path names a WAV or AIFF file.
func isPCMFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".aif", ".aiff":
		return true
	}

	return false
}

// openSink picks the sink for path. The returned func closes the output
// file once the player has closed the sink.
func openSink(path string, stdout io.Writer, pcm bool) (sink.Sink, func() error, error) {
	if path == "" || path == "-" {
		return sink.NewRaw(bufio.NewWriter(stdout)), func() error { return nil }, nil
	}

	f, err := createOutput(path)
	if err != nil {
		return nil, nil, err
	}

	if !pcm {
		return sink.NewRaw(bufio.NewWriter(f)), f.Close, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return sink.NewWAV(f), f.Close, nil
	default:
		return sink.NewAIFF(f), f.Close, nil
	}
}

func describe(stream audio.Stream) string {
	f := stream.Format()

	name := "DSD64"
	if f.SampleRate == audio.RateDSD128 {
		name = "DSD128"
	}

	order := "MSB first"
	if f.LSBFirst {
		order = "LSB first"
	}

	desc := fmt.Sprintf("%s %d Hz, %d ch, %d samples (%s), %s",
		name, f.SampleRate, f.Channels, f.TotalSamples, f.Duration().Round(time.Millisecond), order)
	if b, ok := stream.(interface{ BlockSize() int }); ok {
		desc += fmt.Sprintf(", block %d", b.BlockSize())
	}

	return desc
}
