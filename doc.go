// SPDX-License-Identifier: EPL-2.0

// Package dsdpbx plays 1-bit DSD audio into PCM-style sinks.
//
// A DSF file is parsed into a stream of per-channel DSD bytes, normalized to
// MSB-first bit order and framed either natively (DSD_U32_BE) or as
// DSD-over-PCM (24-bit big-endian with alternating 0x05/0xFA markers). The
// frames go to a sink: a raw byte pipe, or a 24-bit WAV or AIFF file for DoP.
//
// # Supported Formats
//
// Only one container profile is accepted:
//   - DSF version 1, stereo, DSD64 (2822400 Hz) or DSD128 (5644800 Hz)
//   - either bit order (bits per sample 1 or 8)
//   - block size per channel up to 1 MiB
//
// Anything else is rejected with an error wrapping audio.ErrFormat.
//
// # Quick Start
//
// The simplest way to play a file is PlayFile:
//
//	out := sink.NewRaw(os.Stdout)
//	stats, err := dsdpbx.PlayFile("track.dsf", out, playback.Config{})
//
// # Building a Pipeline
//
// For more control, assemble the stages yourself:
//
//	stream, _ := dsf.Open(file)
//	wavSink := sink.NewWAV(outFile)
//	p := playback.New(stream, wavSink, playback.Config{Mode: playback.ModeDoP})
//	err := p.Run()
//
// # Subpackages
//
//   - audio: shared types, stream and decoder interfaces, error categories
//   - formats/dsf: DSF container parser and block reader
//   - frame: native and DoP frame encoders
//   - sink: sink contract with raw, WAV and AIFF implementations
//   - playback: the player state machine
//   - utils: bit reversal and 24-bit helpers
//
// See the individual subpackages for more detailed documentation.
package dsdpbx
