package dsp

import "math"

const (
	// BaseFrequency is the pitch of frequency level 0 in Hz (A2).
	BaseFrequency = 110.0

	// MinAmplitudeLevel is the quietest amplitude level. Level 0 is unity gain.
	MinAmplitudeLevel = -45

	// OctaveSteps is the number of frequency levels in one octave.
	OctaveSteps = 12

	// silenceFloorDB is reported for non-positive amplitudes.
	silenceFloorDB = -144.0
)

//nolint:gochecknoglobals // Level ratios shared by every conversion
var (
	// semitoneRatio is the frequency ratio between adjacent levels: 2^(1/12).
	semitoneRatio = math.Pow(2.0, 1.0/OctaveSteps)

	// amplitudeRatio is the amplitude ratio between adjacent levels: 10^(1/10).
	amplitudeRatio = math.Pow(10.0, 1.0/10.0)
)

// FrequencyForLevel converts a frequency level to Hz.
// Uses the formula: hz = 110 * 2^(level/12).
func FrequencyForLevel(level int) float64 {
	return BaseFrequency * math.Pow(semitoneRatio, float64(level))
}

// AmplitudeForLevel converts an amplitude level to a linear gain.
// Uses the formula: linear = 10^(level/10), so level 0 is 1.0 and each step is one dB
// on the 10*log10 scale used by the trial log.
func AmplitudeForLevel(level int) float64 {
	return math.Pow(amplitudeRatio, float64(level))
}

// LinearToDB converts a linear gain to decibels on the same scale as amplitude levels.
// Uses the formula: dB = 10 * log10(linear).
func LinearToDB(linear float64) float64 {
	if linear <= 0 || math.IsNaN(linear) {
		return silenceFloorDB
	}

	return 10.0 * math.Log10(linear)
}

// MaxFrequencyLevelFor returns the highest frequency level whose pitch stays at or below
// the Nyquist frequency of sampleRate. The result is <= 0 when Nyquist is not above
// BaseFrequency.
func MaxFrequencyLevelFor(sampleRate float64) int {
	nyquist := sampleRate / 2.0
	if nyquist <= BaseFrequency {
		return 0
	}

	return int(math.Floor(math.Log(nyquist/BaseFrequency) / math.Log(semitoneRatio)))
}

// AngularFrequency converts Hz to radians per second.
func AngularFrequency(hz float64) float64 {
	return 2.0 * math.Pi * hz
}
