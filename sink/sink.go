// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"fmt"

	"github.com/ik5/dsdpbx/audio"
)

// Period bounds applied by Configure when the caller leaves PeriodFrames at 0
// or asks for more than a sink buffers.
const (
	DefaultPeriodFrames = 4096
	MaxPeriodFrames     = 1 << 16
)

// Config holds the parameters negotiated with a sink.
type Config struct {
	// SampleRate in frames per second.
	SampleRate int
	// Channels per frame.
	Channels int
	// Format of every channel sample inside a frame.
	Format audio.SampleFormat
	// PeriodFrames is the preferred number of frames per write.
	PeriodFrames int
}

// FrameBytes is the size of one interleaved frame.
func (c Config) FrameBytes() int {
	return c.Channels * c.Format.BytesPerSample()
}

// Sink accepts interleaved frames at a configured rate and format.
type Sink interface {
	// Configure negotiates cfg. The returned Config is what the sink will
	// actually use; PeriodFrames may differ from the request.
	Configure(cfg Config) (Config, error)

	// WriteFrames plays frames frames from buf and returns how many were accepted.
	WriteFrames(buf []byte, frames int) (int, error)

	// Close flushes and releases the sink.
	Close() error
}

// validate checks the parts of cfg every sink depends on and fills in the period.
func validate(cfg Config) (Config, error) {
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 {
		return cfg, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidConfig, cfg.SampleRate, cfg.Channels)
	}
	if cfg.Format.BytesPerSample() == 0 {
		return cfg, fmt.Errorf("%w: %v", ErrUnsupportedFormat, cfg.Format)
	}

	switch {
	case cfg.PeriodFrames <= 0:
		cfg.PeriodFrames = DefaultPeriodFrames
	case cfg.PeriodFrames > MaxPeriodFrames:
		cfg.PeriodFrames = MaxPeriodFrames
	}

	return cfg, nil
}

// frameSlice returns the bytes of frames frames, failing when buf is short.
func frameSlice(cfg Config, buf []byte, frames int) ([]byte, error) {
	size := frames * cfg.FrameBytes()
	if frames < 0 || len(buf) < size {
		return nil, fmt.Errorf("%w: %d bytes for %d frames of %d bytes", ErrShortBuffer, len(buf), frames, cfg.FrameBytes())
	}

	return buf[:size], nil
}
