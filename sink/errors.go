// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"errors"
	"fmt"

	"github.com/ik5/dsdpbx/audio"
)

var (
	// ErrUnsupportedFormat indicates the sink cannot play the requested sample format
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported sample format", audio.ErrSinkNegotiation)

	// ErrInvalidConfig indicates a non-positive rate or channel count
	ErrInvalidConfig = fmt.Errorf("%w: invalid configuration", audio.ErrSinkNegotiation)

	// ErrAlreadyConfigured indicates Configure was called twice
	ErrAlreadyConfigured = fmt.Errorf("%w: sink already configured", audio.ErrSinkNegotiation)

	// ErrNotConfigured indicates WriteFrames before a successful Configure
	ErrNotConfigured = fmt.Errorf("%w: sink not configured", audio.ErrSinkWrite)

	// ErrShortBuffer indicates fewer bytes than frames*frame size were given
	ErrShortBuffer = fmt.Errorf("%w: buffer shorter than frame count", audio.ErrSinkWrite)

	// ErrClosed indicates use of a closed sink
	ErrClosed = errors.New("sink is closed")
)
