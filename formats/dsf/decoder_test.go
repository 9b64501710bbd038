// SPDX-License-Identifier: EPL-2.0

package dsf

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ik5/dsdpbx/audio"
	"github.com/ik5/dsdpbx/internal/audiotest"
)

// headerSize is the size of the DSD, fmt and data chunk headers in a plain file
const headerSize = 28 + 52 + 12

var errDisk = errors.New("disk on fire")

// failingSource serves the first failAfter bytes, then fails every read
type failingSource struct {
	*bytes.Reader
	failAfter int64
}

func (f *failingSource) Read(p []byte) (int, error) {
	pos, _ := f.Reader.Seek(0, io.SeekCurrent)
	if pos >= f.failAfter {
		return 0, errDisk
	}

	return f.Reader.Read(p[:min(int64(len(p)), f.failAfter-pos)])
}

func openBytes(t *testing.T, data []byte) *Reader {
	t.Helper()

	r, err := Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}

	return r
}

func newChannelBuffers(channels, size int) [][]byte {
	dst := make([][]byte, channels)
	for ch := range dst {
		dst[ch] = make([]byte, size)
	}

	return dst
}

func TestOpen_ValidFile(t *testing.T) {
	t.Parallel()

	opts := audiotest.NewDSFOptions(4096, audiotest.Ramp(0, 100), audiotest.Ramp(50, 100))
	r := openBytes(t, audiotest.BuildDSF(opts))

	format := r.Format()
	if format.SampleRate != audio.RateDSD64 {
		t.Errorf("SampleRate = %d, want %d", format.SampleRate, audio.RateDSD64)
	}
	if format.Channels != 2 {
		t.Errorf("Channels = %d, want 2", format.Channels)
	}
	if format.TotalSamples != 800 {
		t.Errorf("TotalSamples = %d, want 800", format.TotalSamples)
	}
	if format.LSBFirst {
		t.Error("LSBFirst = true, want false for 8 bits per sample")
	}
	if format.MetadataOffset != 0 {
		t.Errorf("MetadataOffset = %d, want 0", format.MetadataOffset)
	}
	if r.BlockSize() != 4096 {
		t.Errorf("BlockSize() = %d, want 4096", r.BlockSize())
	}
	if len(r.buf) != 4096*2 {
		t.Errorf("block buffer holds %d bytes, want %d", len(r.buf), 4096*2)
	}
}

func TestOpen_PositionsAtFirstSample(t *testing.T) {
	t.Parallel()

	opts := audiotest.NewDSFOptions(8, audiotest.Ramp(1, 8), audiotest.Ramp(9, 8))
	src := bytes.NewReader(audiotest.BuildDSF(opts))

	if _, err := Open(src); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	pos, _ := src.Seek(0, io.SeekCurrent)
	if pos != headerSize {
		t.Errorf("source offset after Open() = %d, want %d", pos, headerSize)
	}
}

func TestOpen_BitOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bps  uint32
		want bool
	}{
		{1, true},
		{8, false},
	}

	for _, tt := range tests {
		opts := audiotest.NewDSFOptions(4, make([]byte, 4), make([]byte, 4))
		opts.BitsPerSample = tt.bps

		r := openBytes(t, audiotest.BuildDSF(opts))
		if r.Format().LSBFirst != tt.want {
			t.Errorf("bits per sample %d: LSBFirst = %v, want %v", tt.bps, r.Format().LSBFirst, tt.want)
		}
	}
}

func TestOpen_DSD128(t *testing.T) {
	t.Parallel()

	opts := audiotest.NewDSFOptions(4, make([]byte, 4), make([]byte, 4))
	opts.SampleRate = audio.RateDSD128

	r := openBytes(t, audiotest.BuildDSF(opts))
	if r.Format().SampleRate != audio.RateDSD128 {
		t.Errorf("SampleRate = %d, want %d", r.Format().SampleRate, audio.RateDSD128)
	}
}

func TestOpen_LargerChunks(t *testing.T) {
	t.Parallel()

	opts := audiotest.NewDSFOptions(4, audiotest.Ramp(0, 4), audiotest.Ramp(4, 4))
	opts.DSDChunkSize = 40
	opts.FmtChunkSize = 64

	r := openBytes(t, audiotest.BuildDSF(opts))

	dst := newChannelBuffers(2, 4)
	n, err := r.Read(dst, 4)
	if err != nil || n != 4 {
		t.Fatalf("Read() = %d, %v, want 4, nil", n, err)
	}
	if !bytes.Equal(dst[0], []byte{0, 1, 2, 3}) || !bytes.Equal(dst[1], []byte{4, 5, 6, 7}) {
		t.Errorf("Read() after extended chunks = %v, want ramps", dst)
	}
}

func TestOpen_MetadataOffset(t *testing.T) {
	t.Parallel()

	opts := audiotest.NewDSFOptions(4, make([]byte, 4), make([]byte, 4))
	opts.Trailer = []byte("ID3\x04\x00\x00\x00\x00\x00\x00")

	r := openBytes(t, audiotest.BuildDSF(opts))

	want := uint64(headerSize + 8)
	if r.Format().MetadataOffset != want {
		t.Errorf("MetadataOffset = %d, want %d", r.Format().MetadataOffset, want)
	}
}

func TestOpen_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*audiotest.DSFOptions)
		want   error
	}{
		{"top-level magic", func(o *audiotest.DSFOptions) { o.DSDTag = "RIFF" }, ErrNotDSFFile},
		{"fmt magic", func(o *audiotest.DSFOptions) { o.FmtTag = "fmt\x00" }, ErrMissingFmtChunk},
		{"data magic", func(o *audiotest.DSFOptions) { o.DataTag = "DATA" }, ErrMissingDataChunk},
		{"version", func(o *audiotest.DSFOptions) { o.Version = 2 }, ErrUnsupportedVersion},
		{"format id", func(o *audiotest.DSFOptions) { o.FormatID = 1 }, ErrUnsupportedFormatID},
		{"channel type mono", func(o *audiotest.DSFOptions) { o.ChannelType = 1 }, ErrUnsupportedChannelType},
		{"channel type 5.1", func(o *audiotest.DSFOptions) { o.ChannelType = 7 }, ErrUnsupportedChannelType},
		{"one channel", func(o *audiotest.DSFOptions) { o.Channels = 1 }, ErrUnsupportedChannelCount},
		{"six channels", func(o *audiotest.DSFOptions) { o.Channels = 6 }, ErrUnsupportedChannelCount},
		{"pcm rate", func(o *audiotest.DSFOptions) { o.SampleRate = 44100 }, ErrUnsupportedSampleRate},
		{"dsd256 rate", func(o *audiotest.DSFOptions) { o.SampleRate = 11289600 }, ErrUnsupportedSampleRate},
		{"zero bits per sample", func(o *audiotest.DSFOptions) { o.BitsPerSample = 0 }, ErrUnsupportedBitsPerSample},
		{"16 bits per sample", func(o *audiotest.DSFOptions) { o.BitsPerSample = 16 }, ErrUnsupportedBitsPerSample},
		{"zero block size", func(o *audiotest.DSFOptions) { o.BlockSize = 0 }, ErrInvalidBlockSize},
		{"huge block size", func(o *audiotest.DSFOptions) { o.BlockSize = MaxBlockSize + 1 }, ErrInvalidBlockSize},
		{"dsd chunk too small", func(o *audiotest.DSFOptions) { o.DSDChunkSize = 12 }, ErrMalformedChunk},
		{"fmt chunk too small", func(o *audiotest.DSFOptions) { o.FmtChunkSize = 40 }, ErrMalformedChunk},
		{"fmt chunk without reserved bytes", func(o *audiotest.DSFOptions) { o.FmtChunkSize = 48 }, ErrMalformedChunk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := audiotest.NewDSFOptions(4, make([]byte, 8), make([]byte, 8))
			tt.modify(&opts)

			r, err := Open(bytes.NewReader(audiotest.BuildDSF(opts)))
			if err == nil {
				t.Fatal("Open() error = nil, want error")
			}
			if r != nil {
				t.Error("Open() returned a reader alongside an error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Open() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, audio.ErrFormat) {
				t.Errorf("Open() error = %v, want it to wrap audio.ErrFormat", err)
			}
		})
	}
}

func TestOpen_Truncated(t *testing.T) {
	t.Parallel()

	full := audiotest.BuildDSF(audiotest.NewDSFOptions(4, make([]byte, 4), make([]byte, 4)))

	// every cut inside the header must fail
	for cut := 0; cut < headerSize; cut++ {
		_, err := Open(bytes.NewReader(full[:cut]))
		if err == nil {
			t.Fatalf("Open() of %d header bytes error = nil, want error", cut)
		}
		if !errors.Is(err, audio.ErrFormat) {
			t.Errorf("Open() of %d header bytes error = %v, want format error", cut, err)
		}
	}
}

func TestOpen_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Open(bytes.NewReader(nil))
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Open() error = %v, want %v", err, ErrTruncated)
	}
}

func TestOpen_ReadFailure(t *testing.T) {
	t.Parallel()

	data := audiotest.BuildDSF(audiotest.NewDSFOptions(4, make([]byte, 4), make([]byte, 4)))
	src := &failingSource{Reader: bytes.NewReader(data), failAfter: 30}

	_, err := Open(src)
	if !errors.Is(err, ErrReadFailure) {
		t.Errorf("Open() error = %v, want %v", err, ErrReadFailure)
	}
	if errors.Is(err, audio.ErrFormat) {
		t.Error("Open() reported an I/O failure as a format error")
	}
}

func TestRead_TwoBlocksThenEOF(t *testing.T) {
	t.Parallel()

	// 2 channels, block size 4, 64 samples (8 bytes) per channel
	left := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	right := []byte{11, 12, 13, 14, 15, 16, 17, 18}
	r := openBytes(t, audiotest.BuildDSF(audiotest.NewDSFOptions(4, left, right)))

	if r.Format().TotalSamples != 64 {
		t.Fatalf("TotalSamples = %d, want 64", r.Format().TotalSamples)
	}

	dst := newChannelBuffers(2, 4)
	for i := range 2 {
		n, err := r.Read(dst, 4)
		if err != nil {
			t.Fatalf("Read() #%d error = %v", i+1, err)
		}
		if n != 4 {
			t.Fatalf("Read() #%d n = %d, want 4", i+1, n)
		}
		if !bytes.Equal(dst[0], left[i*4:i*4+4]) {
			t.Errorf("Read() #%d left = %v, want %v", i+1, dst[0], left[i*4:i*4+4])
		}
		if !bytes.Equal(dst[1], right[i*4:i*4+4]) {
			t.Errorf("Read() #%d right = %v, want %v", i+1, dst[1], right[i*4:i*4+4])
		}
	}

	n, err := r.Read(dst, 4)
	if n != 0 || err != io.EOF {
		t.Errorf("Read() after last block = %d, %v, want 0, io.EOF", n, err)
	}
	if r.SamplesRead() != 64 {
		t.Errorf("SamplesRead() = %d, want 64", r.SamplesRead())
	}
}

func TestRead_RequestSpansBlocks(t *testing.T) {
	t.Parallel()

	left := audiotest.Ramp(0, 12)
	right := audiotest.Ramp(100, 12)
	r := openBytes(t, audiotest.BuildDSF(audiotest.NewDSFOptions(4, left, right)))

	dst := newChannelBuffers(2, 10)
	n, err := r.Read(dst, 10)
	if err != nil || n != 10 {
		t.Fatalf("Read() = %d, %v, want 10, nil", n, err)
	}

	if !bytes.Equal(dst[0], left[:10]) {
		t.Errorf("left = %v, want %v", dst[0], left[:10])
	}
	if !bytes.Equal(dst[1], right[:10]) {
		t.Errorf("right = %v, want %v", dst[1], right[:10])
	}

	n, err = r.Read(dst, 10)
	if err != nil || n != 2 {
		t.Fatalf("second Read() = %d, %v, want 2, nil", n, err)
	}
	if !bytes.Equal(dst[0][:2], left[10:]) || !bytes.Equal(dst[1][:2], right[10:]) {
		t.Errorf("second Read() = %v / %v, want tails", dst[0][:2], dst[1][:2])
	}
}

func TestRead_TruncatesPaddedFinalBlock(t *testing.T) {
	t.Parallel()

	// 16 bytes per channel on disk, but only 80 samples (10 bytes) declared
	opts := audiotest.NewDSFOptions(8, audiotest.Ramp(0, 16), audiotest.Ramp(64, 16))
	opts.TotalSamples = 80
	r := openBytes(t, audiotest.BuildDSF(opts))

	dst := newChannelBuffers(2, 4)
	var got []int
	total := 0
	for {
		n, err := r.Read(dst, 4)
		if err == io.EOF {
			if n != 0 {
				t.Errorf("Read() at EOF n = %d, want 0", n)
			}
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		got = append(got, n)
		total += n
	}

	want := []int{4, 4, 2}
	if len(got) != len(want) {
		t.Fatalf("Read() sizes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Read() sizes = %v, want %v", got, want)
			break
		}
	}
	if total != 10 {
		t.Errorf("total bytes per channel = %d, want 10", total)
	}
	if r.SamplesRead() != 80 {
		t.Errorf("SamplesRead() = %d, want 80", r.SamplesRead())
	}

	// stays finished
	if n, err := r.Read(dst, 4); n != 0 || err != io.EOF {
		t.Errorf("Read() after EOF = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestRead_PaddingNeverServed(t *testing.T) {
	t.Parallel()

	opts := audiotest.NewDSFOptions(4, audiotest.Ramp(1, 6), audiotest.Ramp(11, 6))
	opts.Pad = 0x69
	r := openBytes(t, audiotest.BuildDSF(opts))

	dst := newChannelBuffers(2, 8)
	n, err := r.Read(dst, 8)
	if err != nil || n != 6 {
		t.Fatalf("Read() = %d, %v, want 6, nil", n, err)
	}
	for ch := range dst {
		for i := n; i < len(dst[ch]); i++ {
			if dst[ch][i] != 0 {
				t.Errorf("channel %d byte %d = %#02x, want untouched", ch, i, dst[ch][i])
			}
		}
	}
}

func TestRead_PartialSampleByte(t *testing.T) {
	t.Parallel()

	// 60 samples end inside the 8th byte, which is still served
	opts := audiotest.NewDSFOptions(4, audiotest.Ramp(0, 8), audiotest.Ramp(8, 8))
	opts.TotalSamples = 60
	r := openBytes(t, audiotest.BuildDSF(opts))

	dst := newChannelBuffers(2, 16)
	n, err := r.Read(dst, 16)
	if err != nil || n != 8 {
		t.Fatalf("Read() = %d, %v, want 8, nil", n, err)
	}
	if r.SamplesRead() != 60 {
		t.Errorf("SamplesRead() = %d, want 60", r.SamplesRead())
	}
}

func TestRead_NeverExceedsRequestOrTotal(t *testing.T) {
	t.Parallel()

	const declared = 37 // bytes per channel
	opts := audiotest.NewDSFOptions(16, audiotest.Ramp(0, 64), audiotest.Ramp(128, 64))
	opts.TotalSamples = declared * 8
	r := openBytes(t, audiotest.BuildDSF(opts))

	const sentinel = 0xee
	requests := []int{1, 3, 5, 16, 7, 2, 9, 30, 30}
	total := 0

	for _, req := range requests {
		dst := newChannelBuffers(2, req+4)
		for ch := range dst {
			for i := range dst[ch] {
				dst[ch][i] = sentinel
			}
		}

		n, err := r.Read(dst, req)
		if err != nil && err != io.EOF {
			t.Fatalf("Read(%d) error = %v", req, err)
		}
		if n > req {
			t.Fatalf("Read(%d) n = %d, more than requested", req, n)
		}
		for ch := range dst {
			for i := req; i < len(dst[ch]); i++ {
				if dst[ch][i] != sentinel {
					t.Fatalf("Read(%d) wrote past the request in channel %d", req, ch)
				}
			}
			for i := range n {
				want := byte(total+i) + byte(ch*128)
				if dst[ch][i] != want {
					t.Fatalf("Read(%d) channel %d byte %d = %d, want %d", req, ch, i, dst[ch][i], want)
				}
			}
		}

		total += n
		if total > declared {
			t.Fatalf("served %d bytes per channel, declared %d", total, declared)
		}
	}

	if total != declared {
		t.Errorf("served %d bytes per channel, want %d", total, declared)
	}
}

func TestRead_DataChunkBoundsTrailer(t *testing.T) {
	t.Parallel()

	opts := audiotest.NewDSFOptions(4, audiotest.Ramp(1, 4), audiotest.Ramp(5, 4))
	opts.TotalSamples = 1000 // overstated
	opts.Trailer = bytes.Repeat([]byte{0xaa}, 32)
	r := openBytes(t, audiotest.BuildDSF(opts))

	dst := newChannelBuffers(2, 100)
	n, err := r.Read(dst, 100)
	if err != nil || n != 4 {
		t.Fatalf("Read() = %d, %v, want 4, nil", n, err)
	}

	n, err = r.Read(dst, 100)
	if n != 0 || err != io.EOF {
		t.Errorf("Read() past data chunk = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestRead_ShortFinalGroup(t *testing.T) {
	t.Parallel()

	full := audiotest.BuildDSF(audiotest.NewDSFOptions(4, audiotest.Ramp(0, 8), audiotest.Ramp(100, 8)))
	// keep the first group and 2 bytes of the second
	r := openBytes(t, full[:headerSize+8+2])

	dst := newChannelBuffers(2, 8)
	n, err := r.Read(dst, 8)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if n != 5 {
		t.Fatalf("Read() n = %d, want 5", n)
	}
	if !bytes.Equal(dst[0][:5], []byte{0, 1, 2, 3, 4}) {
		t.Errorf("left = %v, want [0 1 2 3 4]", dst[0][:5])
	}

	n, err = r.Read(dst, 8)
	if n != 0 || err != io.EOF {
		t.Errorf("Read() after short group = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestRead_EmptyData(t *testing.T) {
	t.Parallel()

	opts := audiotest.NewDSFOptions(4)
	opts.TotalSamples = 64
	r := openBytes(t, audiotest.BuildDSF(opts))

	n, err := r.Read(newChannelBuffers(2, 4), 4)
	if n != 0 || err != io.EOF {
		t.Errorf("Read() of empty data chunk = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestRead_SourceFailureIsNotEOF(t *testing.T) {
	t.Parallel()

	data := audiotest.BuildDSF(audiotest.NewDSFOptions(4, audiotest.Ramp(0, 8), audiotest.Ramp(0, 8)))
	src := &failingSource{Reader: bytes.NewReader(data), failAfter: headerSize + 8}

	r, err := Open(src)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	dst := newChannelBuffers(2, 8)
	n, err := r.Read(dst, 8)
	if !errors.Is(err, ErrReadFailure) {
		t.Fatalf("Read() error = %v, want %v", err, ErrReadFailure)
	}
	if !errors.Is(err, errDisk) {
		t.Errorf("Read() error = %v, want it to wrap the source error", err)
	}
	if errors.Is(err, io.EOF) {
		t.Error("Read() reported a source failure as io.EOF")
	}
	if n != 4 {
		t.Errorf("Read() n = %d, want the 4 bytes read before the failure", n)
	}
}

func TestRead_ShortBuffers(t *testing.T) {
	t.Parallel()

	data := audiotest.BuildDSF(audiotest.NewDSFOptions(4, make([]byte, 8), make([]byte, 8)))

	tests := []struct {
		name string
		dst  [][]byte
	}{
		{"one channel", newChannelBuffers(1, 8)},
		{"small buffers", newChannelBuffers(2, 4)},
		{"uneven buffers", [][]byte{make([]byte, 8), make([]byte, 2)}},
	}

	for _, tt := range tests {
		r := openBytes(t, data)

		n, err := r.Read(tt.dst, 8)
		if !errors.Is(err, ErrShortBuffer) {
			t.Errorf("%s: Read() error = %v, want %v", tt.name, err, ErrShortBuffer)
		}
		if n != 0 {
			t.Errorf("%s: Read() n = %d, want 0", tt.name, n)
		}
	}
}

func TestRead_ZeroRequest(t *testing.T) {
	t.Parallel()

	r := openBytes(t, audiotest.BuildDSF(audiotest.NewDSFOptions(4, make([]byte, 4), make([]byte, 4))))

	n, err := r.Read(nil, 0)
	if n != 0 || err != nil {
		t.Errorf("Read(nil, 0) = %d, %v, want 0, nil", n, err)
	}
}

func TestReader_Close(t *testing.T) {
	t.Parallel()

	r := openBytes(t, audiotest.BuildDSF(audiotest.NewDSFOptions(4, make([]byte, 4), make([]byte, 4))))

	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}

	_, err := r.Read(newChannelBuffers(2, 4), 4)
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Read() after Close() error = %v, want %v", err, ErrClosed)
	}
}

func TestDecoder_Registry(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register(Kind, Decoder{})

	dec, ok := reg.Get(Kind)
	if !ok {
		t.Fatal("Registry.Get(\"dsf\") failed")
	}

	opts := audiotest.NewDSFOptions(4096, make([]byte, 2822400/8), make([]byte, 2822400/8))
	stream, err := dec.Decode(bytes.NewReader(audiotest.BuildDSF(opts)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer stream.Close()

	if d := stream.Format().Duration(); d != time.Second {
		t.Errorf("Duration() = %v, want 1s", d)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	stream, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not DSF data")))
	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
	if stream != nil {
		t.Error("Decode() returned a non-nil stream for invalid data")
	}
}

// BenchmarkReader_Read benchmarks draining one second of DSD64 stereo
func BenchmarkReader_Read(b *testing.B) {
	ch := make([]byte, 2822400/8)
	data := audiotest.BuildDSF(audiotest.NewDSFOptions(4096, ch, ch))
	dst := newChannelBuffers(2, 2048)

	b.ReportAllocs()
	b.SetBytes(int64(len(ch) * 2))

	for b.Loop() {
		r, err := Open(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := r.Read(dst, 2048); err != nil {
				break
			}
		}
	}
}
