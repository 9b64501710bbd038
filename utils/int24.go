// SPDX-License-Identifier: EPL-2.0

package utils

// Int24FromBE decodes a big-endian 3-byte sample and sign-extends it.
// b must hold at least 3 bytes.
func Int24FromBE(b []byte) int {
	v := int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])

	// Shift the sign bit into place
	return int(v<<8) >> 8
}
