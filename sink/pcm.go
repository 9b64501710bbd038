// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/dsdpbx/audio"
	"github.com/ik5/dsdpbx/utils"
)

const (
	pcmBitDepth  = 24
	wavFormatPCM = 1
)

// pcmEncoder is the part of the go-audio encoders the file sinks use.
type pcmEncoder interface {
	Write(buf *goaudio.IntBuffer) error
	Close() error
}

// pcmFile stores DoP frames as 24-bit PCM through a go-audio encoder. DoP
// survives this unchanged: a DoP sample is a 24-bit PCM sample.
type pcmFile struct {
	newEncoder func(cfg Config) pcmEncoder

	enc    pcmEncoder
	cfg    Config
	buf    *goaudio.IntBuffer
	closed bool
}

func (p *pcmFile) Configure(cfg Config) (Config, error) {
	if p.closed {
		return cfg, ErrClosed
	}
	if p.enc != nil {
		return cfg, ErrAlreadyConfigured
	}

	cfg, err := validate(cfg)
	if err != nil {
		return cfg, err
	}
	if cfg.Format != audio.SampleFormatDoP24BE {
		return cfg, fmt.Errorf("%w: %v, only 24-bit DoP can be stored as PCM", ErrUnsupportedFormat, cfg.Format)
	}

	p.cfg = cfg
	p.enc = p.newEncoder(cfg)
	p.buf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: cfg.Channels,
			SampleRate:  cfg.SampleRate,
		},
		Data:           make([]int, 0, cfg.PeriodFrames*cfg.Channels),
		SourceBitDepth: pcmBitDepth,
	}

	return cfg, nil
}

func (p *pcmFile) WriteFrames(buf []byte, frames int) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	if p.enc == nil {
		return 0, ErrNotConfigured
	}

	data, err := frameSlice(p.cfg, buf, frames)
	if err != nil {
		return 0, err
	}

	samples := frames * p.cfg.Channels
	if cap(p.buf.Data) < samples {
		p.buf.Data = make([]int, samples)
	}
	p.buf.Data = p.buf.Data[:samples]

	for i := range samples {
		p.buf.Data[i] = utils.Int24FromBE(data[i*3:])
	}

	if err := p.enc.Write(p.buf); err != nil {
		return 0, fmt.Errorf("%w: %w", audio.ErrSinkWrite, err)
	}

	return frames, nil
}

// Close finalizes the file headers. The underlying writer stays open.
func (p *pcmFile) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if p.enc == nil {
		return nil
	}
	if err := p.enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrSinkWrite, err)
	}

	return nil
}

// WAV writes DoP frames into a 24-bit PCM WAV file.
type WAV struct {
	pcmFile
}

var _ Sink = (*WAV)(nil)

func NewWAV(w io.WriteSeeker) *WAV {
	return &WAV{pcmFile{
		newEncoder: func(cfg Config) pcmEncoder {
			return wav.NewEncoder(w, cfg.SampleRate, pcmBitDepth, cfg.Channels, wavFormatPCM)
		},
	}}
}

// AIFF writes DoP frames into a 24-bit PCM AIFF file. AIFF samples are big
// endian, so the file bytes match the DoP frames exactly.
type AIFF struct {
	pcmFile
}

var _ Sink = (*AIFF)(nil)

func NewAIFF(w io.WriteSeeker) *AIFF {
	return &AIFF{pcmFile{
		newEncoder: func(cfg Config) pcmEncoder {
			return aiff.NewEncoder(w, cfg.SampleRate, pcmBitDepth, cfg.Channels)
		},
	}}
}
