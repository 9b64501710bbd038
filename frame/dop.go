// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"github.com/ik5/dsdpbx/audio"
	"github.com/ik5/dsdpbx/utils"
)

// DoP markers. A compliant receiver expects them to alternate on every
// 16-bit group.
const (
	MarkerA byte = 0x05
	MarkerB byte = 0xfa
)

const (
	dopGroupBytes  = 2
	dopSampleBytes = 3
)

// DoP packs DSD into DSD-over-PCM frames: for every channel, a 3-byte sample
// made of a marker byte and 2 DSD bytes. Sinks play it as 24-bit PCM at a
// 16th of the DSD rate.
//
// The marker alternates between MarkerA and MarkerB across 16-bit groups and
// the phase carries over between Encode calls. Set ConstantMarker to emit
// MarkerA on every sample instead; DoP DACs will not lock onto that stream.
type DoP struct {
	ConstantMarker bool

	odd bool // next group uses MarkerB
}

var _ Encoder = (*DoP)(nil)

// NewDoP returns a DoP encoder starting on MarkerA.
func NewDoP() *DoP {
	return &DoP{}
}

func (d *DoP) EncodedSize(n, channels int) int  { return n / dopGroupBytes * channels * dopSampleBytes }
func (d *DoP) ChannelBytesPerFrame() int        { return dopGroupBytes }
func (d *DoP) SampleFormat() audio.SampleFormat { return audio.SampleFormatDoP24BE }
func (d *DoP) RateDivisor() int                 { return 8 * dopGroupBytes }

// Reset restarts the marker sequence on MarkerA.
func (d *DoP) Reset() {
	d.odd = false
}

// Encode frames any number of channels. An odd n fails with ErrOddLength and
// writes nothing.
func (d *DoP) Encode(dst []byte, src [][]byte, n int, lsbFirst bool) (int, error) {
	if n%dopGroupBytes != 0 {
		return 0, ErrOddLength
	}
	if n <= 0 {
		return 0, nil
	}
	if len(src) == 0 {
		return 0, ErrChannelCount
	}
	if err := checkSources(src, n, len(src)); err != nil {
		return 0, err
	}
	if len(dst) < d.EncodedSize(n, len(src)) {
		return 0, ErrShortBuffer
	}

	i := 0
	for p := 0; p < n; p += dopGroupBytes {
		marker := d.marker()
		for _, ch := range src {
			x := dst[i : i+dopSampleBytes]
			x[0] = marker
			if lsbFirst {
				x[1] = utils.ReverseBits(ch[p])
				x[2] = utils.ReverseBits(ch[p+1])
			} else {
				x[1] = ch[p]
				x[2] = ch[p+1]
			}
			i += dopSampleBytes
		}
	}

	return i, nil
}

// marker returns the marker of the next group and advances the phase.
func (d *DoP) marker() byte {
	if d.ConstantMarker {
		return MarkerA
	}

	m := MarkerA
	if d.odd {
		m = MarkerB
	}
	d.odd = !d.odd

	return m
}
