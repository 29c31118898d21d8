package main

import (
	"encoding/binary"
	"math"
)

// decodeFloat32LE converts device bytes back to samples.
func decodeFloat32LE(p []byte) []float32 {
	samples := make([]float32, len(p)/bytesPerSample)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*bytesPerSample:]))
	}

	return samples
}

// channelRMS returns the RMS of one channel of interleaved frames.
func channelRMS(samples []float32, channels, ch int) float64 {
	frames := len(samples) / channels
	if frames == 0 {
		return 0
	}

	var sum float64
	for f := 0; f < frames; f++ {
		v := float64(samples[f*channels+ch])
		sum += v * v
	}

	return math.Sqrt(sum / float64(frames))
}

// channelPeaks returns the absolute peak of each channel of interleaved frames.
func channelPeaks(samples []float32, channels int) []float64 {
	peaks := make([]float64, channels)
	for i, v := range samples[:len(samples)/channels*channels] {
		peaks[i%channels] = max(peaks[i%channels], math.Abs(float64(v)))
	}

	return peaks
}
