// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"github.com/ik5/dsdpbx/audio"
	"github.com/ik5/dsdpbx/utils"
)

// groupBytes is the number of bytes per channel in one native frame (32 bits).
const groupBytes = 4

// Interleave writes stereo native DSD frames: 4 bytes of the left channel
// followed by 4 bytes of the right channel. Sinks play it as DSD_U32_BE at
// a 32nd of the DSD rate.
type Interleave struct{}

var _ Encoder = Interleave{}

func (Interleave) EncodedSize(n, channels int) int  { return n * channels }
func (Interleave) ChannelBytesPerFrame() int        { return groupBytes }
func (Interleave) SampleFormat() audio.SampleFormat { return audio.SampleFormatDSDU32BE }
func (Interleave) RateDivisor() int                 { return 8 * groupBytes }

// Encode interleaves exactly two channels. The output is always 2*n bytes. A
// trailing group shorter than 4 bytes is written as the left tail followed by
// the right tail.
func (Interleave) Encode(dst []byte, src [][]byte, n int, lsbFirst bool) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if err := checkSources(src, n, 2); err != nil {
		return 0, err
	}
	if len(dst) < 2*n {
		return 0, ErrShortBuffer
	}

	l, r := src[0][:n], src[1][:n]
	i := 0
	for j := 0; j < n; j += groupBytes {
		end := min(j+groupBytes, n)
		size := end - j

		if lsbFirst {
			utils.ReverseBytes(dst[i:i+size], l[j:end])
			utils.ReverseBytes(dst[i+size:i+2*size], r[j:end])
		} else {
			copy(dst[i:i+size], l[j:end])
			copy(dst[i+size:i+2*size], r[j:end])
		}

		i += 2 * size
	}

	return i, nil
}
