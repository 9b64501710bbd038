// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"fmt"
	"io"

	"github.com/ik5/dsdpbx/audio"
)

// Raw writes frames verbatim to an io.Writer, e.g. a pipe into a player that
// accepts DSD_U32_BE or 24-bit big-endian DoP. It accepts every sample format.
type Raw struct {
	w          io.Writer
	cfg        Config
	configured bool
	closed     bool
	frames     int64
}

var _ Sink = (*Raw)(nil)

// NewRaw returns a sink writing to w. Close flushes w when it has a Flush
// method but never closes it.
func NewRaw(w io.Writer) *Raw {
	return &Raw{w: w}
}

func (r *Raw) Configure(cfg Config) (Config, error) {
	if r.closed {
		return cfg, ErrClosed
	}
	if r.configured {
		return cfg, ErrAlreadyConfigured
	}

	cfg, err := validate(cfg)
	if err != nil {
		return cfg, err
	}

	r.cfg = cfg
	r.configured = true

	return cfg, nil
}

func (r *Raw) WriteFrames(buf []byte, frames int) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if !r.configured {
		return 0, ErrNotConfigured
	}

	data, err := frameSlice(r.cfg, buf, frames)
	if err != nil {
		return 0, err
	}

	n, err := r.w.Write(data)
	accepted := n / r.cfg.FrameBytes()
	r.frames += int64(accepted)
	if err != nil {
		return accepted, fmt.Errorf("%w: %w", audio.ErrSinkWrite, err)
	}

	return accepted, nil
}

// Frames is the number of frames written so far.
func (r *Raw) Frames() int64 { return r.frames }

func (r *Raw) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if f, ok := r.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrSinkWrite, err)
		}
	}

	return nil
}
