// SPDX-License-Identifier: EPL-2.0

package dsdpbx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/dsdpbx/audio"
	"github.com/ik5/dsdpbx/formats/dsf"
	"github.com/ik5/dsdpbx/playback"
	"github.com/ik5/dsdpbx/sink"
)

// ErrUnknownContainer is returned by PlayFile for a file extension no decoder
// is registered for.
var ErrUnknownContainer = fmt.Errorf("%w: no decoder for container", audio.ErrFormat)

// Formats holds the decoders PlayFile can pick from, keyed by lower-case file
// extension without the dot.
var Formats = newFormats()

func newFormats() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(dsf.Kind, dsf.Decoder{})

	return reg
}

// Play runs a playback.Player over stream and s until the stream ends or a
// stage fails. Both stream and s are closed when Play returns.
//
// Example:
//
//	stream, _ := dsf.Open(file)
//	stats, err := dsdpbx.Play(stream, sink.NewRaw(os.Stdout), playback.Config{})
func Play(stream audio.Stream, s sink.Sink, cfg playback.Config) (playback.Stats, error) {
	p := playback.New(stream, s, cfg)
	err := p.Run()

	return p.Stats(), err
}

// PlayFile opens path with the decoder registered for its extension and plays
// it into s. The sink is closed even when the file cannot be opened.
func PlayFile(path string, s sink.Sink, cfg playback.Config) (playback.Stats, error) {
	dec, err := DecoderFor(path)
	if err != nil {
		return playback.Stats{}, closeWith(s, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return playback.Stats{}, closeWith(s, fmt.Errorf("opening input: %w", err))
	}
	defer f.Close()

	stream, err := dec.Decode(f)
	if err != nil {
		return playback.Stats{}, closeWith(s, fmt.Errorf("decoding %s: %w", filepath.Base(path), err))
	}

	return Play(stream, s, cfg)
}

// DecoderFor returns the decoder registered in Formats for the extension of path.
func DecoderFor(path string) (audio.Decoder, error) {
	kind := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	dec, ok := Formats.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContainer, kind)
	}

	return dec, nil
}

func closeWith(s sink.Sink, err error) error {
	_ = s.Close()

	return err
}
