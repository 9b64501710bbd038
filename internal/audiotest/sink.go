// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"github.com/ik5/dsdpbx/audio"
	"github.com/ik5/dsdpbx/sink"
)

// RecordingSink is a sink.Sink that keeps everything it is given.
// Its failure knobs let tests drive every termination path of a player.
type RecordingSink struct {
	// ConfigureErr is returned by Configure when set.
	ConfigureErr error
	// Override, when non-nil, replaces the negotiated config.
	Override func(sink.Config) sink.Config
	// AcceptLimit caps the frames accepted per write when > 0.
	AcceptLimit int
	// WriteErr is returned by WriteFrames when set.
	WriteErr error
	// CloseErr is returned by Close when set.
	CloseErr error

	Requested  sink.Config
	Negotiated sink.Config
	Data       []byte
	Writes     []int // frames submitted per call
	CloseCount int
}

var _ sink.Sink = (*RecordingSink)(nil)

func (s *RecordingSink) Configure(cfg sink.Config) (sink.Config, error) {
	s.Requested = cfg
	if s.ConfigureErr != nil {
		return cfg, s.ConfigureErr
	}

	if s.Override != nil {
		cfg = s.Override(cfg)
	}
	s.Negotiated = cfg

	return cfg, nil
}

func (s *RecordingSink) WriteFrames(buf []byte, frames int) (int, error) {
	s.Writes = append(s.Writes, frames)
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}

	accepted := frames
	if s.AcceptLimit > 0 && accepted > s.AcceptLimit {
		accepted = s.AcceptLimit
	}

	s.Data = append(s.Data, buf[:accepted*s.Negotiated.FrameBytes()]...)

	return accepted, nil
}

func (s *RecordingSink) Close() error {
	s.CloseCount++

	return s.CloseErr
}

// CountingStream wraps a stream and counts Close calls.
type CountingStream struct {
	audio.Stream

	Reads  []int // bytes per channel returned by each Read
	Closes int
}

func (c *CountingStream) Read(dst [][]byte, n int) (int, error) {
	k, err := c.Stream.Read(dst, n)
	c.Reads = append(c.Reads, k)

	return k, err
}

func (c *CountingStream) Close() error {
	c.Closes++

	return c.Stream.Close()
}
