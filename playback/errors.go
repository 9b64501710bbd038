// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"errors"
	"fmt"

	"github.com/ik5/dsdpbx/audio"
)

var (
	// ErrNotStereo indicates a stream with a channel count other than 2
	ErrNotStereo = fmt.Errorf("%w: only stereo streams can be played", audio.ErrFormat)

	// ErrNegotiationMismatch indicates the sink settled on a different rate, channel count or format
	ErrNegotiationMismatch = fmt.Errorf("%w: sink changed rate, channels or format", audio.ErrSinkNegotiation)

	// ErrShortWrite indicates the sink accepted fewer frames than submitted
	ErrShortWrite = fmt.Errorf("%w: sink accepted fewer frames than submitted", audio.ErrSinkWrite)

	// ErrUnknownMode indicates an output mode other than native or dop
	ErrUnknownMode = errors.New("unknown playback mode")

	// ErrAlreadyRun indicates Run was called on a terminated player
	ErrAlreadyRun = errors.New("player already ran")
)
