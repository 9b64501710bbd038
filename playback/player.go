// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ik5/dsdpbx/audio"
	"github.com/ik5/dsdpbx/frame"
	"github.com/ik5/dsdpbx/sink"
	"github.com/ik5/dsdpbx/utils"
)

// silence is the DSD idle pattern, MSB first.
const silence byte = 0x69

// State of a Player. A player only moves forward through these states.
type State int

const (
	StateInit State = iota
	StateNegotiating
	StateStreaming
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateNegotiating:
		return "negotiating"
	case StateStreaming:
		return "streaming"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mode selects the frame encoder.
type Mode int

const (
	// ModeNative sends DSD_U32_BE frames.
	ModeNative Mode = iota
	// ModeDoP sends DSD-over-PCM frames.
	ModeDoP
)

func (m Mode) String() string {
	switch m {
	case ModeNative:
		return "native"
	case ModeDoP:
		return "dop"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "native" or "dop", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "native", "":
		return ModeNative, nil
	case "dop":
		return ModeDoP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Config tunes a Player. The zero value plays native DSD with the sink's
// default period.
type Config struct {
	Mode Mode
	// PeriodFrames requested from the sink; 0 lets the sink choose.
	PeriodFrames int
	// ConstantMarker makes DoP emit a single marker value (see frame.DoP).
	ConstantMarker bool
}

// Stats counts what a Player moved through the pipeline.
type Stats struct {
	Reads           int
	BytesPerChannel int64
	Frames          int64
}

// Player drives one stream into one sink: negotiate, then read, encode and
// write until the stream ends or a stage fails. It owns both and closes both.
type Player struct {
	stream audio.Stream
	sink   sink.Sink
	cfg    Config

	state      State
	negotiated sink.Config
	stats      Stats
}

func New(stream audio.Stream, s sink.Sink, cfg Config) *Player {
	return &Player{
		stream: stream,
		sink:   s,
		cfg:    cfg,
		state:  StateInit,
	}
}

func (p *Player) State() State            { return p.state }
func (p *Player) Stats() Stats            { return p.stats }
func (p *Player) Negotiated() sink.Config { return p.negotiated }

// Run plays the whole stream. It returns nil when the stream ended cleanly.
// The sink and then the stream are closed on every path; a close failure is
// reported only when playback itself succeeded.
func (p *Player) Run() (err error) {
	if p.state != StateInit {
		return ErrAlreadyRun
	}

	defer func() {
		p.state = StateTerminated

		closeErr := errors.Join(p.closeSink(), p.stream.Close())
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	format := p.stream.Format()
	if format.Channels != 2 {
		return fmt.Errorf("%w: %d channels", ErrNotStereo, format.Channels)
	}

	enc, err := p.encoder()
	if err != nil {
		return err
	}

	p.state = StateNegotiating
	if err := p.negotiate(enc, format); err != nil {
		return err
	}

	p.state = StateStreaming

	return p.pump(enc, format)
}

func (p *Player) encoder() (frame.Encoder, error) {
	switch p.cfg.Mode {
	case ModeNative:
		return frame.Interleave{}, nil
	case ModeDoP:
		return &frame.DoP{ConstantMarker: p.cfg.ConstantMarker}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, p.cfg.Mode)
	}
}

func (p *Player) negotiate(enc frame.Encoder, format audio.Format) error {
	req := sink.Config{
		SampleRate:   frame.FrameRate(enc, format.SampleRate),
		Channels:     format.Channels,
		Format:       enc.SampleFormat(),
		PeriodFrames: p.cfg.PeriodFrames,
	}

	got, err := p.sink.Configure(req)
	if err != nil {
		if !errors.Is(err, audio.ErrSinkNegotiation) {
			err = fmt.Errorf("%w: %w", audio.ErrSinkNegotiation, err)
		}

		return fmt.Errorf("configuring sink: %w", err)
	}

	if got.SampleRate != req.SampleRate || got.Channels != req.Channels || got.Format != req.Format {
		return fmt.Errorf("%w: asked %d Hz %d ch %v, got %d Hz %d ch %v", ErrNegotiationMismatch,
			req.SampleRate, req.Channels, req.Format, got.SampleRate, got.Channels, got.Format)
	}
	if got.PeriodFrames <= 0 {
		got.PeriodFrames = sink.DefaultPeriodFrames
	}

	p.negotiated = got

	return nil
}

// pump reads, encodes and writes until the stream ends.
func (p *Player) pump(enc frame.Encoder, format audio.Format) error {
	unit := enc.ChannelBytesPerFrame()
	perChannel := p.negotiated.PeriodFrames * unit

	bufs := make([][]byte, format.Channels)
	for ch := range bufs {
		bufs[ch] = make([]byte, perChannel)
	}
	out := make([]byte, enc.EncodedSize(perChannel, format.Channels))

	pad := silence
	if format.LSBFirst {
		pad = utils.ReverseBits(silence)
	}

	for {
		n, err := p.stream.Read(bufs, perChannel)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading samples: %w", err)
		}
		// a stream that makes no progress is finished
		if n == 0 {
			return nil
		}

		p.stats.Reads++
		p.stats.BytesPerChannel += int64(n)

		// the last read of a stream may stop inside a frame
		padded := (n + unit - 1) / unit * unit
		for ch := range bufs {
			for i := n; i < padded; i++ {
				bufs[ch][i] = pad
			}
		}

		written, err := enc.Encode(out, bufs, padded, format.LSBFirst)
		if err != nil {
			return fmt.Errorf("encoding frames: %w", err)
		}

		frames := padded / unit
		accepted, err := p.sink.WriteFrames(out[:written], frames)
		p.stats.Frames += int64(accepted)
		if err != nil {
			if !errors.Is(err, audio.ErrSinkWrite) {
				err = fmt.Errorf("%w: %w", audio.ErrSinkWrite, err)
			}

			return fmt.Errorf("writing frames: %w", err)
		}
		if accepted != frames {
			return fmt.Errorf("%w: %d of %d", ErrShortWrite, accepted, frames)
		}
	}
}

func (p *Player) closeSink() error {
	if err := p.sink.Close(); err != nil {
		return fmt.Errorf("closing sink: %w", err)
	}

	return nil
}
