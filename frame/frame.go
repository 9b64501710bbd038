// SPDX-License-Identifier: EPL-2.0

package frame

import "github.com/ik5/dsdpbx/audio"

// Encoder turns per-channel DSD bytes into the interleaved frames a sink plays.
type Encoder interface {
	// Encode reads n bytes from every src[ch], normalizes the bit order to
	// MSB first when lsbFirst is set and writes frames into dst. It returns
	// the number of bytes written.
	Encode(dst []byte, src [][]byte, n int, lsbFirst bool) (int, error)

	// EncodedSize is the output size of Encode for n bytes per channel.
	EncodedSize(n, channels int) int

	// ChannelBytesPerFrame is how many source bytes of one channel make one frame.
	ChannelBytesPerFrame() int

	// SampleFormat of the produced frames.
	SampleFormat() audio.SampleFormat

	// RateDivisor converts the DSD rate into the sink frame rate.
	RateDivisor() int
}

// FrameRate is the sink frame rate for a DSD stream at dsdRate.
func FrameRate(e Encoder, dsdRate int) int {
	return dsdRate / e.RateDivisor()
}

// checkSources verifies src holds channels buffers of at least n bytes.
func checkSources(src [][]byte, n, channels int) error {
	if len(src) != channels {
		return ErrChannelCount
	}

	for _, ch := range src {
		if len(ch) < n {
			return ErrShortBuffer
		}
	}

	return nil
}
