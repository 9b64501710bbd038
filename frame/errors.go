// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"errors"
	"fmt"

	"github.com/ik5/dsdpbx/audio"
)

var (
	// ErrOddLength indicates a DoP request that does not split into 16-bit groups
	ErrOddLength = fmt.Errorf("%w: DoP needs an even byte count per channel", audio.ErrFraming)

	// ErrChannelCount indicates the encoder cannot frame this many channels
	ErrChannelCount = errors.New("unsupported channel count for encoder")

	// ErrShortBuffer indicates a source or destination buffer smaller than the request
	ErrShortBuffer = errors.New("buffer too small for request")
)
