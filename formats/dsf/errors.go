// SPDX-License-Identifier: EPL-2.0

package dsf

import (
	"errors"
	"fmt"

	"github.com/ik5/dsdpbx/audio"
)

var (
	// ErrNotDSFFile indicates the top-level "DSD " chunk is missing
	ErrNotDSFFile = fmt.Errorf("%w: not a DSF file", audio.ErrFormat)

	// ErrMissingFmtChunk indicates the "fmt " chunk is not where the DSD chunk points
	ErrMissingFmtChunk = fmt.Errorf("%w: missing DSF fmt chunk", audio.ErrFormat)

	// ErrMissingDataChunk indicates the "data" chunk does not follow the fmt chunk
	ErrMissingDataChunk = fmt.Errorf("%w: missing DSF data chunk", audio.ErrFormat)

	// ErrMalformedChunk indicates a chunk size smaller than its own header
	ErrMalformedChunk = fmt.Errorf("%w: malformed DSF chunk size", audio.ErrFormat)

	// ErrTruncated indicates the header ended before all fields were read
	ErrTruncated = fmt.Errorf("%w: truncated DSF header", audio.ErrFormat)

	// ErrUnsupportedVersion indicates a format version other than 1
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported DSF format version", audio.ErrFormat)

	// ErrUnsupportedFormatID indicates a format id other than raw DSD
	ErrUnsupportedFormatID = fmt.Errorf("%w: only raw DSD is supported", audio.ErrFormat)

	// ErrUnsupportedChannelType indicates a channel layout other than stereo
	ErrUnsupportedChannelType = fmt.Errorf("%w: only stereo channel type is supported", audio.ErrFormat)

	// ErrUnsupportedChannelCount indicates a channel count other than 2
	ErrUnsupportedChannelCount = fmt.Errorf("%w: only 2 channels are supported", audio.ErrFormat)

	// ErrUnsupportedSampleRate indicates a rate other than DSD64 or DSD128
	ErrUnsupportedSampleRate = fmt.Errorf("%w: only DSD64 and DSD128 are supported", audio.ErrFormat)

	// ErrUnsupportedBitsPerSample indicates a bits-per-sample value other than 1 or 8
	ErrUnsupportedBitsPerSample = fmt.Errorf("%w: bits per sample must be 1 or 8", audio.ErrFormat)

	// ErrInvalidBlockSize indicates a zero or oversized block size per channel
	ErrInvalidBlockSize = fmt.Errorf("%w: invalid DSF block size", audio.ErrFormat)

	// ErrReadFailure is returned when reading from the underlying source fails.
	ErrReadFailure = errors.New("read failure")

	// ErrShortBuffer is returned when Read gets fewer or smaller channel buffers than needed.
	ErrShortBuffer = errors.New("channel buffers too small for request")

	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("reader is closed")
)
