// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Error categories. Package specific errors wrap one of these so callers can
// tell a broken container from a sink failure with errors.Is.
var (
	ErrFormat          = errors.New("unsupported or malformed container")
	ErrSinkNegotiation = errors.New("sink rejected stream parameters")
	ErrSinkWrite       = errors.New("sink write failed")
	ErrFraming         = errors.New("invalid frame length")
)
