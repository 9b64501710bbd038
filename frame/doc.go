// SPDX-License-Identifier: EPL-2.0

// Package frame converts per-channel DSD bytes into sink frames.
//
// Two encoders implement the Encoder interface:
//   - Interleave: native DSD, 4 bytes per channel per frame (DSD_U32_BE),
//     played at DSD rate / 32
//   - DoP: DSD-over-PCM, a marker byte plus 2 DSD bytes per channel per
//     frame (24-bit PCM), played at DSD rate / 16
//
// Both normalize bit order: when the source is LSB first every byte is
// passed through the bit reverse table, otherwise bytes are copied as is.
//
//	enc := frame.Interleave{}
//	out := make([]byte, enc.EncodedSize(n, 2))
//	written, err := enc.Encode(out, [][]byte{left, right}, n, format.LSBFirst)
//
// # DoP Markers
//
// DoP receivers detect the stream by its marker bytes, which must alternate
// between 0x05 and 0xFA on every 16-bit group. DoP keeps that phase across
// Encode calls; create one encoder per stream or call Reset between streams.
// DoP.ConstantMarker emits 0x05 only, for comparison with players that do so.
//
// # Errors
//
// DoP rejects an odd byte count with ErrOddLength (an audio.ErrFraming) and
// writes nothing. Buffers that are too small fail with ErrShortBuffer.
package frame
