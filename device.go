package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"hearing-test/dsp"
)

// errStreamFailed wraps a panic raised while producing a buffer.
var errStreamFailed = errors.New("audio stream failed")

// toneReader adapts a ToneSynthesizer to the io.Reader pull model used by oto.
// Read runs on oto's player goroutine and must not block.
type toneReader struct {
	synth    *dsp.ToneSynthesizer
	channels int
	err      atomic.Pointer[error]
}

func newToneReader(synth *dsp.ToneSynthesizer) *toneReader {
	return &toneReader{synth: synth, channels: synth.Channels()}
}

// Read fills p with whole interleaved float32 little-endian frames.
// A failure inside synthesis ends the stream; there is no safe way to resume mid-buffer.
func (r *toneReader) Read(p []byte) (n int, err error) {
	if errp := r.err.Load(); errp != nil {
		return 0, *errp
	}

	defer func() {
		if rec := recover(); rec != nil {
			streamErr := fmt.Errorf("%w: %v", errStreamFailed, rec)
			r.err.Store(&streamErr)
			n, err = 0, streamErr
		}
	}()

	// oto requests whole frames; a shorter p is left for the next call
	frames := len(p) / (r.channels * bytesPerSample)

	samples, _ := r.synth.ProduceBuffer(frames)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}

	return len(samples) * bytesPerSample, nil
}

// Err returns the error that stopped the stream, if any.
func (r *toneReader) Err() error {
	if errp := r.err.Load(); errp != nil {
		return *errp
	}

	return nil
}
