// SPDX-License-Identifier: EPL-2.0

// Package dsf provides DSF (DSD Stream File) decoding.
//
// DSF is a chunked container for 1-bit DSD audio. A file holds three chunks in
// a fixed order, all integers little-endian:
//   - "DSD " chunk (28 bytes): total file size and the offset of an optional
//     trailing ID3 metadata chunk
//   - "fmt " chunk (52 bytes): version, format id, channel layout, sampling
//     rate, bits per sample, sample count and block size per channel
//   - "data" chunk: the samples, stored as alternating per-channel blocks
//
// # Supported Files
//
// Only one profile is accepted; everything else is rejected while parsing:
//   - format version 1, raw DSD (format id 0)
//   - stereo (channel type 2, 2 channels)
//   - DSD64 (2822400 Hz) or DSD128 (5644800 Hz)
//   - 1 bit per sample (LSB first) or 8 bits per sample (MSB first)
//
// # Reading DSF Files
//
// Use Open to parse the header:
//
//	file, _ := os.Open("track.dsf")
//	r, err := dsf.Open(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	// One buffer per channel
//	dst := [][]byte{make([]byte, 4096), make([]byte, 4096)}
//	n, err := r.Read(dst, 4096)
//
// Read serves the same number of bytes for every channel and never goes past
// the declared sample count, so block padding at the end of the file is
// dropped. Bits are returned exactly as stored; Format.LSBFirst tells the
// caller whether they need reversing.
//
// Decoder wraps Open for use with audio.Registry under the "dsf" key.
//
// # Error Handling
//
// Every parse failure wraps audio.ErrFormat together with a specific error:
//   - ErrNotDSFFile, ErrMissingFmtChunk, ErrMissingDataChunk: wrong chunk tags
//   - ErrUnsupportedVersion, ErrUnsupportedFormatID, ErrUnsupportedChannelType,
//     ErrUnsupportedChannelCount, ErrUnsupportedSampleRate,
//     ErrUnsupportedBitsPerSample: outside the supported profile
//   - ErrTruncated, ErrMalformedChunk, ErrInvalidBlockSize: damaged headers
//
// A failing source is reported as ErrReadFailure; the end of the samples is io.EOF.
package dsf
