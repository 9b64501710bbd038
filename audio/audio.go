// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
	"time"
)

// Supported DSD sampling rates in Hz.
const (
	RateDSD64  = 2822400
	RateDSD128 = 5644800
)

// Format describes a DSD stream. It is filled once when the container is
// opened and never changes afterwards.
type Format struct {
	// SampleRate in Hz (one bit per sample per channel).
	SampleRate int
	// Channels count (e.g., 2=stereo).
	Channels int
	// TotalSamples per channel, in bits.
	TotalSamples uint64
	// LSBFirst reports that the oldest sample of every byte sits in bit 0.
	LSBFirst bool
	// MetadataOffset is the absolute offset of the trailing metadata chunk, 0 if none.
	MetadataOffset uint64
}

// Duration of the stream at its native rate.
func (f Format) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}

	secs := f.TotalSamples / uint64(f.SampleRate)
	rem := f.TotalSamples % uint64(f.SampleRate)

	return time.Duration(secs)*time.Second +
		time.Duration(rem*uint64(time.Second)/uint64(f.SampleRate))
}

// BytesPerChannel is the number of bytes that hold TotalSamples, rounded up.
func (f Format) BytesPerChannel() uint64 {
	return (f.TotalSamples + 7) / 8
}

// SampleFormat identifies the layout of frames handed to a sink.
type SampleFormat int

const (
	SampleFormatInvalid SampleFormat = iota
	// SampleFormatDSDU32BE packs 32 DSD bits per channel per frame, oldest bit in the MSB.
	SampleFormatDSDU32BE
	// SampleFormatDoP24BE carries 16 DSD bits per channel in a 3-byte DoP sample.
	SampleFormatDoP24BE
)

func (s SampleFormat) String() string {
	switch s {
	case SampleFormatDSDU32BE:
		return "DSD_U32_BE"
	case SampleFormatDoP24BE:
		return "DoP_S24_3BE"
	default:
		return "invalid"
	}
}

// BytesPerSample is the size of one channel's sample inside a frame.
func (s SampleFormat) BytesPerSample() int {
	switch s {
	case SampleFormatDSDU32BE:
		return 4
	case SampleFormatDoP24BE:
		return 3
	default:
		return 0
	}
}

type Stream interface {
	// Format of the opened stream.
	Format() Format
	// Read fills dst[ch][:k] for every channel with up to n bytes of that
	// channel's samples and returns k. Every dst[ch] must hold at least n bytes.
	// When k == 0 with err == io.EOF, the stream is finished.
	Read(dst [][]byte, n int) (k int, err error)

	// Close releases any resources.
	Close() error
}

// Decoder parses a container and returns a Stream positioned at the first sample.
type Decoder interface {
	Decode(r io.ReadSeeker) (Stream, error)
}

// Registry for decoders by container kind (e.g., "dsf").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]

	return d, ok
}
