package dsp

import (
	"math"
	"sync/atomic"
)

const twoPi = 2.0 * math.Pi

// SynthMeters holds output levels for the status screen.
type SynthMeters struct {
	Peak           float64
	Buffers        uint64
	SamplesEmitted uint64
}

// ToneSynthesizer renders a single sine tone into interleaved multi-channel buffers.
//
// Time is measured from stream start (samplesEmitted / sampleRate), not per buffer.
// When the target frequency changes, phase is corrected so the waveform continues
// without a jump at the buffer boundary. Amplitude changes are ramped linearly across
// one buffer.
//
// ProduceBuffer must be called from a single goroutine (the audio callback).
// Targets are read from the TargetSource once at the start of every buffer.
type ToneSynthesizer struct {
	source     TargetSource
	sampleRate float64
	channels   int

	phase            float64 // [0, 2π)
	currentFrequency float64 // rad/s, what was last played
	currentAmplitude float64 // linear, what was last played
	samplesEmitted   uint64

	buf []float32 // Reused output buffer for ProduceBuffer

	// Metering (Atomic bits of float64 for lock-free UI reading)
	peak            atomic.Uint64
	producedBuffers atomic.Uint64
	emitted         atomic.Uint64
}

// NewToneSynthesizer creates a synthesizer that starts at the source's current targets,
// so the first buffer plays without a ramp.
func NewToneSynthesizer(source TargetSource, sampleRate float64, channels int) *ToneSynthesizer {
	if channels < 1 {
		channels = 1
	}

	start := source.Targets()

	return &ToneSynthesizer{
		source:           source,
		sampleRate:       sampleRate,
		channels:         channels,
		currentFrequency: start.Frequency,
		currentAmplitude: start.Amplitude,
	}
}

// SampleRate returns the output sample rate in Hz.
func (s *ToneSynthesizer) SampleRate() float64 {
	return s.sampleRate
}

// Channels returns the number of interleaved output channels.
func (s *ToneSynthesizer) Channels() int {
	return s.channels
}

// ProduceBuffer renders frameCount frames and returns them interleaved.
// The returned slice is owned by the synthesizer and is overwritten by the next call.
// The boolean asks the caller to keep streaming; it is always true.
func (s *ToneSynthesizer) ProduceBuffer(frameCount int) ([]float32, bool) {
	if frameCount < 0 {
		frameCount = 0
	}

	n := frameCount * s.channels
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	s.buf = s.buf[:n]

	s.render(s.buf, frameCount)

	return s.buf, true
}

// render is the per-buffer state machine behind ProduceBuffer.
func (s *ToneSynthesizer) render(out []float32, frameCount int) {
	t0 := float64(s.samplesEmitted) / s.sampleRate
	targets := s.source.Targets()

	targetFrequency := targets.Frequency
	if targetFrequency != s.currentFrequency {
		s.phase = wrapPhase(s.phase + t0*(s.currentFrequency-targetFrequency))
		s.currentFrequency = targetFrequency
	}

	startAmplitude := s.currentAmplitude
	targetAmplitude := targets.Amplitude
	rampStep := 0.0
	if targetAmplitude != startAmplitude {
		if frameCount > 1 {
			rampStep = (targetAmplitude - startAmplitude) / float64(frameCount-1)
		}
		s.currentAmplitude = targetAmplitude
	}

	var peak float64
	for i := 0; i < frameCount; i++ {
		amplitude := startAmplitude
		if rampStep != 0 {
			amplitude = startAmplitude + rampStep*float64(i)
			if i == frameCount-1 {
				amplitude = targetAmplitude
			}
		}

		t := t0 + float64(i)/s.sampleRate
		value := amplitude * math.Sin(s.phase+s.currentFrequency*t)

		if abs := math.Abs(value); abs > peak {
			peak = abs
		}

		sample := float32(value)
		base := i * s.channels
		for ch := 0; ch < s.channels; ch++ {
			out[base+ch] = sample
		}
	}

	s.samplesEmitted += uint64(frameCount)

	s.peak.Store(math.Float64bits(peak))
	s.producedBuffers.Add(1)
	s.emitted.Store(s.samplesEmitted)
}

// Meters returns current meter values safely from any goroutine.
func (s *ToneSynthesizer) Meters() SynthMeters {
	return SynthMeters{
		Peak:           math.Float64frombits(s.peak.Load()),
		Buffers:        s.producedBuffers.Load(),
		SamplesEmitted: s.emitted.Load(),
	}
}

// wrapPhase maps any phase to [0, 2π).
func wrapPhase(phase float64) float64 {
	phase = math.Mod(phase, twoPi)
	if phase < 0 {
		phase += twoPi
	}
	if phase >= twoPi {
		phase = 0
	}

	return phase
}
