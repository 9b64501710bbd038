// SPDX-License-Identifier: EPL-2.0

package dsf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/dsdpbx/audio"
)

// Kind is the registry key of the DSF container.
const Kind = "dsf"

const (
	tagDSD  = "DSD "
	tagFmt  = "fmt "
	tagData = "data"

	chunkHeaderSize = 12 // 4-byte tag + 8-byte size
	dsdChunkSize    = 28 // header + total file size + metadata pointer
	fmtFieldsSize   = 36 // version .. block size per channel
	fmtReservedSize = 4
	fmtChunkMinSize = chunkHeaderSize + fmtFieldsSize + fmtReservedSize // 52

	formatVersion     = 1
	formatIDRawDSD    = 0
	channelTypeStereo = 2
	stereoChannels    = 2

	bitsPerSampleLSB = 1
	bitsPerSampleMSB = 8

	// MaxBlockSize bounds the per-channel block size a file may declare.
	// Real encoders use 4096.
	MaxBlockSize = 1 << 20
)

// Reader parses a DSF container and serves its samples one channel buffer at a time.
//
// The on-disk layout stores BlockSize bytes of channel 0, then BlockSize bytes
// of channel 1, and so on. Reader keeps exactly one such block group in memory.
type Reader struct {
	src       io.Reader // bounded to the data chunk payload
	format    audio.Format
	channels  int
	blockSize int

	buf    []byte // blockSize * channels, de-interleaved
	filled int    // valid bytes per channel in buf
	pos    int    // next unread offset per channel, pos <= filled

	served  uint64 // bytes per channel handed out
	emitted uint64 // samples (bits) per channel handed out, never above TotalSamples
	closed  bool
}

// Open parses the DSF header and leaves rs positioned at the first sample byte.
// Any failure leaves rs at an undefined offset; the caller owns rs and must
// discard it.
func Open(rs io.ReadSeeker) (*Reader, error) {
	// "DSD " chunk
	size, err := readChunkHeader(rs, tagDSD, ErrNotDSFFile)
	if err != nil {
		return nil, err
	}
	if size < dsdChunkSize {
		return nil, fmt.Errorf("%w: DSD chunk size %d", ErrMalformedChunk, size)
	}

	var dsd [16]byte
	if err := readFull(rs, dsd[:]); err != nil {
		return nil, err
	}
	metadataOffset := binary.LittleEndian.Uint64(dsd[8:16])

	if err := skip(rs, size-dsdChunkSize); err != nil {
		return nil, err
	}

	// "fmt " chunk
	size, err = readChunkHeader(rs, tagFmt, ErrMissingFmtChunk)
	if err != nil {
		return nil, err
	}
	if size < fmtChunkMinSize {
		return nil, fmt.Errorf("%w: fmt chunk size %d", ErrMalformedChunk, size)
	}

	var fields [fmtFieldsSize]byte
	if err := readFull(rs, fields[:]); err != nil {
		return nil, err
	}

	format, blockSize, err := parseFmtFields(fields[:])
	if err != nil {
		return nil, err
	}
	format.MetadataOffset = metadataOffset

	if err := skip(rs, size-chunkHeaderSize-fmtFieldsSize); err != nil {
		return nil, err
	}

	// "data" chunk
	size, err = readChunkHeader(rs, tagData, ErrMissingDataChunk)
	if err != nil {
		return nil, err
	}
	if size < chunkHeaderSize {
		return nil, fmt.Errorf("%w: data chunk size %d", ErrMalformedChunk, size)
	}

	payload := size - chunkHeaderSize
	if payload > uint64(1<<63-1) {
		return nil, fmt.Errorf("%w: data chunk size %d", ErrMalformedChunk, size)
	}

	return &Reader{
		src:       io.LimitReader(rs, int64(payload)),
		format:    format,
		channels:  format.Channels,
		blockSize: blockSize,
		buf:       make([]byte, blockSize*format.Channels),
	}, nil
}

// parseFmtFields validates the fixed fmt chunk fields in file order.
func parseFmtFields(b []byte) (audio.Format, int, error) {
	le := binary.LittleEndian

	if v := le.Uint32(b[0:4]); v != formatVersion {
		return audio.Format{}, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	if v := le.Uint32(b[4:8]); v != formatIDRawDSD {
		return audio.Format{}, 0, fmt.Errorf("%w: format id %d", ErrUnsupportedFormatID, v)
	}
	if v := le.Uint32(b[8:12]); v != channelTypeStereo {
		return audio.Format{}, 0, fmt.Errorf("%w: channel type %d", ErrUnsupportedChannelType, v)
	}

	channels := le.Uint32(b[12:16])
	if channels != stereoChannels {
		return audio.Format{}, 0, fmt.Errorf("%w: %d channels", ErrUnsupportedChannelCount, channels)
	}

	rate := le.Uint32(b[16:20])
	if rate != audio.RateDSD64 && rate != audio.RateDSD128 {
		return audio.Format{}, 0, fmt.Errorf("%w: %d Hz", ErrUnsupportedSampleRate, rate)
	}

	bps := le.Uint32(b[20:24])
	if bps != bitsPerSampleLSB && bps != bitsPerSampleMSB {
		return audio.Format{}, 0, fmt.Errorf("%w: %d", ErrUnsupportedBitsPerSample, bps)
	}

	totalSamples := le.Uint64(b[24:32])

	blockSize := le.Uint32(b[32:36])
	if blockSize == 0 || blockSize > MaxBlockSize {
		return audio.Format{}, 0, fmt.Errorf("%w: %d bytes", ErrInvalidBlockSize, blockSize)
	}

	return audio.Format{
		SampleRate:   int(rate),
		Channels:     int(channels),
		TotalSamples: totalSamples,
		LSBFirst:     bps == bitsPerSampleLSB,
	}, int(blockSize), nil
}

// readChunkHeader reads a chunk tag and its size, failing with tagErr on a tag mismatch.
func readChunkHeader(r io.Reader, tag string, tagErr error) (uint64, error) {
	var hdr [chunkHeaderSize]byte
	if err := readFull(r, hdr[:]); err != nil {
		return 0, err
	}

	if string(hdr[0:4]) != tag {
		return 0, fmt.Errorf("%w: found %q", tagErr, hdr[0:4])
	}

	return binary.LittleEndian.Uint64(hdr[4:12]), nil
}

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %w", ErrTruncated, err)
		}

		return fmt.Errorf("%w: %w", ErrReadFailure, err)
	}

	return nil
}

// skip moves rs forward by n bytes from the current offset.
func skip(rs io.Seeker, n uint64) error {
	if n == 0 {
		return nil
	}
	if n > uint64(1<<63-1) {
		return fmt.Errorf("%w: skip of %d bytes", ErrMalformedChunk, n)
	}

	if _, err := rs.Seek(int64(n), io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: %w", ErrReadFailure, err)
	}

	return nil
}

// Format returns the stream description parsed by Open.
func (r *Reader) Format() audio.Format { return r.format }

// BlockSize is the declared per-channel block size in bytes.
func (r *Reader) BlockSize() int { return r.blockSize }

// SamplesRead is the number of samples per channel served so far.
func (r *Reader) SamplesRead() uint64 { return r.emitted }

// Close releases the block buffer. The underlying source is owned by the
// caller and stays open.
func (r *Reader) Close() error {
	r.closed = true
	r.buf = nil
	r.filled, r.pos = 0, 0

	return nil
}

// Read copies up to n bytes of every channel into dst[ch][:k] and returns k.
//
// Blocks are pulled from the source as the internal buffer runs dry. Reads
// never go past TotalSamples, even when the final block carries padding.
// At the end of the stream Read returns (0, io.EOF). A failing source is
// reported with ErrReadFailure, never as io.EOF.
func (r *Reader) Read(dst [][]byte, n int) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, nil
	}
	if len(dst) < r.channels {
		return 0, fmt.Errorf("%w: %d buffers for %d channels", ErrShortBuffer, len(dst), r.channels)
	}
	for ch := range r.channels {
		if len(dst[ch]) < n {
			return 0, fmt.Errorf("%w: channel %d holds %d bytes, need %d", ErrShortBuffer, ch, len(dst[ch]), n)
		}
	}

	remaining := r.format.BytesPerChannel() - r.served
	if remaining == 0 {
		return 0, io.EOF
	}

	want := n
	if uint64(want) > remaining {
		want = int(remaining)
	}

	total := 0
	var readErr error
	for total < want {
		if r.pos == r.filled {
			if err := r.fill(); err != nil {
				if !errors.Is(err, io.EOF) {
					readErr = err
				}

				break
			}
		}

		size := min(want-total, r.filled-r.pos)
		for ch := range r.channels {
			off := ch*r.blockSize + r.pos
			copy(dst[ch][total:total+size], r.buf[off:off+size])
		}

		r.pos += size
		total += size
	}

	r.served += uint64(total)
	r.emitted = min(r.emitted+uint64(total)*8, r.format.TotalSamples)

	if readErr != nil {
		return total, readErr
	}
	if total == 0 {
		return 0, io.EOF
	}

	return total, nil
}

// fill loads the next block group. It returns io.EOF once the source is drained.
func (r *Reader) fill() error {
	k, err := io.ReadFull(r.src, r.buf)
	switch {
	case err == nil, errors.Is(err, io.ErrUnexpectedEOF):
		// a short final group still splits evenly by channel
	case errors.Is(err, io.EOF):
		return io.EOF
	default:
		return fmt.Errorf("%w: %w", ErrReadFailure, err)
	}

	// never replay bytes of the previous group
	clear(r.buf[k:])

	r.filled = k / r.channels
	r.pos = 0

	if r.filled == 0 {
		return io.EOF
	}

	return nil
}

// Decoder opens DSF streams for the audio registry.
type Decoder struct{}

func (Decoder) Decode(r io.ReadSeeker) (audio.Stream, error) {
	reader, err := Open(r)
	if err != nil {
		return nil, err
	}

	return reader, nil
}
