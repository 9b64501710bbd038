// SPDX-License-Identifier: EPL-2.0

// Package audio provides the shared types of the DSD playback pipeline.
//
// This package contains the building blocks every other package agrees on:
//   - Format, the immutable description of an opened DSD stream
//   - Stream interface for per-channel sample input
//   - Decoder interface and a registry keyed by container kind
//   - SampleFormat, the frame layout negotiated with a sink
//   - Error categories shared by parsers, encoders and sinks
//
// # Stream Interface
//
// The Stream interface is the foundation of the pipeline:
//
//	type Stream interface {
//	    Format() Format
//	    Read(dst [][]byte, n int) (int, error)
//	    Close() error
//	}
//
// Samples are served de-interleaved: one caller-owned buffer per channel.
// Read returns the number of bytes written into each buffer. The end of the
// stream is reported as (0, io.EOF); any other error is an I/O failure.
//
// # Format Registry
//
// The registry allows dynamic decoder registration:
//
//	registry := audio.NewRegistry()
//	registry.Register("dsf", dsf.Decoder{})
//	decoder, _ := registry.Get("dsf")
//
// Only the DSF container ships today; new containers register the same way.
//
// # Sample Format
//
// DSD samples are single bits. Bytes returned by a Stream carry eight samples
// per channel in the bit order reported by Format.LSBFirst. Sinks receive
// either native DSD frames (SampleFormatDSDU32BE) or DSD-over-PCM frames
// (SampleFormatDoP24BE).
//
// # Errors
//
// ErrFormat, ErrSinkNegotiation, ErrSinkWrite and ErrFraming are categories.
// Package specific errors wrap them:
//
//	if errors.Is(err, audio.ErrFormat) {
//	    // the container is unusable
//	}
package audio
