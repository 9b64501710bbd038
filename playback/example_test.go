// SPDX-License-Identifier: EPL-2.0

package playback_test

import (
	"bytes"
	"fmt"

	"github.com/ik5/dsdpbx/formats/dsf"
	"github.com/ik5/dsdpbx/internal/audiotest"
	"github.com/ik5/dsdpbx/playback"
	"github.com/ik5/dsdpbx/sink"
)

// Example demonstrates playing a DSF stream into a raw sink as DoP frames.
func Example() {
	left := []byte{0x11, 0x22, 0x33, 0x44}
	right := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	file := audiotest.BuildDSF(audiotest.NewDSFOptions(4, left, right))

	stream, err := dsf.Open(bytes.NewReader(file))
	if err != nil {
		fmt.Printf("Open error: %v\n", err)
		return
	}

	var out bytes.Buffer
	p := playback.New(stream, sink.NewRaw(&out), playback.Config{Mode: playback.ModeDoP})
	if err := p.Run(); err != nil {
		fmt.Printf("Run error: %v\n", err)
		return
	}

	cfg := p.Negotiated()
	fmt.Printf("%d Hz %v\n", cfg.SampleRate, cfg.Format)
	fmt.Printf("frames: %d\n", p.Stats().Frames)
	fmt.Printf("% x\n", out.Bytes())
	// Output:
	// 176400 Hz DoP_S24_3BE
	// frames: 2
	// 05 11 22 05 aa bb fa 33 44 fa cc dd
}
