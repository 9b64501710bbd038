// SPDX-License-Identifier: EPL-2.0

// Package playback moves an opened DSD stream into a sink.
//
// A Player owns one audio.Stream and one sink.Sink. Run negotiates the sink
// format, then loops: read a period of bytes per channel, frame them and
// write the frames. It returns nil when the stream reports io.EOF or a read
// returns no bytes.
//
// # Modes
//
// ModeNative frames the stream as DSD_U32_BE at a 32nd of the DSD rate.
// ModeDoP frames it as DSD-over-PCM, 24-bit big-endian at a 16th of the
// DSD rate:
//
//	DSD64  native  88200 Hz   dop 176400 Hz
//	DSD128 native 176400 Hz   dop 352800 Hz
//
// # States
//
//	Init -> Negotiating -> Streaming -> Terminated
//
// Every failure and the end of the stream lead to Terminated. The sink and
// then the stream are closed on the way out, whatever the outcome.
//
// # Padding
//
// The last read of a stream may end inside a frame. The rest of that frame is
// filled with the DSD idle pattern 0x69 so the sink still receives whole
// frames.
//
// # Errors
//
// Errors carry the category of the failing stage, test them with errors.Is:
//   - audio.ErrFormat: the stream is not stereo
//   - audio.ErrSinkNegotiation: the sink refused or altered the request
//   - audio.ErrSinkWrite: a write failed or was short
//   - audio.ErrFraming: the encoder was given an invalid length
package playback
