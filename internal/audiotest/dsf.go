// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
)

// DSFOptions describes a synthetic DSF file. Zero values are replaced by the
// values of a valid DSD64 stereo file (see NewDSFOptions).
type DSFOptions struct {
	DSDTag  string
	FmtTag  string
	DataTag string

	Version       uint32
	FormatID      uint32
	ChannelType   uint32
	Channels      uint32
	SampleRate    uint32
	BitsPerSample uint32
	TotalSamples  uint64
	BlockSize     uint32

	// DSDChunkSize and FmtChunkSize override the declared chunk sizes when non-zero.
	DSDChunkSize uint64
	FmtChunkSize uint64

	// Data holds each channel's sample bytes. Every channel is padded with
	// Pad up to a whole number of blocks.
	Data [][]byte
	Pad  byte

	// Trailer is appended after the data chunk (e.g. an ID3 chunk).
	Trailer []byte
}

// NewDSFOptions returns options for a valid stereo DSD64, MSB-first file
// carrying data, with TotalSamples covering every data byte.
func NewDSFOptions(blockSize uint32, data ...[]byte) DSFOptions {
	var samples uint64
	if len(data) > 0 {
		samples = uint64(len(data[0])) * 8
	}

	return DSFOptions{
		DSDTag:        "DSD ",
		FmtTag:        "fmt ",
		DataTag:       "data",
		Version:       1,
		FormatID:      0,
		ChannelType:   2,
		Channels:      2,
		SampleRate:    2822400,
		BitsPerSample: 8,
		TotalSamples:  samples,
		BlockSize:     blockSize,
		Data:          data,
	}
}

// BuildDSF lays out a DSF file the way encoders write it: DSD chunk, fmt
// chunk, then the data chunk with per-channel blocks.
func BuildDSF(opts DSFOptions) []byte {
	buf := new(bytes.Buffer)
	le := binary.LittleEndian

	payload := blockData(opts)

	dsdSize := opts.DSDChunkSize
	if dsdSize == 0 {
		dsdSize = 28
	}
	fmtSize := opts.FmtChunkSize
	if fmtSize == 0 {
		fmtSize = 52
	}
	dataSize := uint64(12 + len(payload))
	fileSize := dsdSize + fmtSize + dataSize + uint64(len(opts.Trailer))

	var metadata uint64
	if len(opts.Trailer) > 0 {
		metadata = dsdSize + fmtSize + dataSize
	}

	// DSD chunk
	buf.WriteString(opts.DSDTag)
	binary.Write(buf, le, dsdSize)
	binary.Write(buf, le, fileSize)
	binary.Write(buf, le, metadata)
	if dsdSize > 28 {
		buf.Write(make([]byte, dsdSize-28))
	}

	// fmt chunk
	buf.WriteString(opts.FmtTag)
	binary.Write(buf, le, fmtSize)
	binary.Write(buf, le, opts.Version)
	binary.Write(buf, le, opts.FormatID)
	binary.Write(buf, le, opts.ChannelType)
	binary.Write(buf, le, opts.Channels)
	binary.Write(buf, le, opts.SampleRate)
	binary.Write(buf, le, opts.BitsPerSample)
	binary.Write(buf, le, opts.TotalSamples)
	binary.Write(buf, le, opts.BlockSize)
	if fmtSize > 48 {
		buf.Write(make([]byte, fmtSize-48)) // reserved
	}

	// data chunk
	buf.WriteString(opts.DataTag)
	binary.Write(buf, le, dataSize)
	buf.Write(payload)

	buf.Write(opts.Trailer)

	return buf.Bytes()
}

// blockData interleaves the channels block by block.
func blockData(opts DSFOptions) []byte {
	if len(opts.Data) == 0 || opts.BlockSize == 0 {
		return nil
	}

	block := int(opts.BlockSize)
	longest := 0
	for _, ch := range opts.Data {
		longest = max(longest, len(ch))
	}
	blocks := (longest + block - 1) / block

	out := make([]byte, 0, blocks*block*len(opts.Data))
	for b := range blocks {
		for _, ch := range opts.Data {
			for i := b * block; i < (b+1)*block; i++ {
				if i < len(ch) {
					out = append(out, ch[i])
				} else {
					out = append(out, opts.Pad)
				}
			}
		}
	}

	return out
}

// Ramp returns n bytes counting up from start, wrapping at 256.
func Ramp(start byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = start + byte(i)
	}

	return out
}
