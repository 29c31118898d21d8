package dsp

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

func newTestController(t *testing.T, sampleRate float64, seed uint64) *LevelController {
	t.Helper()

	c, err := NewLevelController(sampleRate, rand.New(rand.NewPCG(seed, seed+1)))
	if err != nil {
		t.Fatalf("NewLevelController(%f) failed: %v", sampleRate, err)
	}

	return c
}

// TestMaxFrequencyLevel44100 verifies the level ceiling at CD sample rate.
func TestMaxFrequencyLevel44100(t *testing.T) {
	t.Parallel()

	c := newTestController(t, 44100.0, 1)

	// floor(12 * log2(22050 / 110)) = floor(91.77)
	if c.MaxFrequencyLevel() != 91 {
		t.Errorf("Expected max frequency level 91, got %d", c.MaxFrequencyLevel())
	}

	if hz := FrequencyForLevel(91); hz > 22050.0 {
		t.Errorf("Level 91 (%f Hz) exceeds Nyquist", hz)
	}

	if hz := FrequencyForLevel(92); hz <= 22050.0 {
		t.Errorf("Level 92 (%f Hz) should exceed Nyquist", hz)
	}
}

// TestNyquistInvariant verifies every reachable level stays at or below Nyquist.
func TestNyquistInvariant(t *testing.T) {
	t.Parallel()

	for _, rate := range []float64{8000, 22050, 44100, 48000, 96000, 192000} {
		maxLevel := MaxFrequencyLevelFor(rate)
		if maxLevel <= 0 {
			t.Errorf("Expected positive max level at %f Hz, got %d", rate, maxLevel)
			continue
		}

		for level := 0; level <= maxLevel; level++ {
			if hz := FrequencyForLevel(level); hz > rate/2.0 {
				t.Errorf("Rate %f: level %d gives %f Hz above Nyquist", rate, level, hz)
			}
		}

		if hz := FrequencyForLevel(maxLevel + 1); hz <= rate/2.0 {
			t.Errorf("Rate %f: max level %d is not the highest valid level", rate, maxLevel)
		}
	}
}

// TestSampleRateTooLow verifies construction fails when Nyquist is below the base frequency.
func TestSampleRateTooLow(t *testing.T) {
	t.Parallel()

	for _, rate := range []float64{0, 100, 220, 230} {
		c, err := NewLevelController(rate, nil)
		if !errors.Is(err, ErrSampleRateTooLow) {
			t.Errorf("Rate %f: expected ErrSampleRateTooLow, got %v", rate, err)
		}

		if c != nil {
			t.Errorf("Rate %f: expected nil controller on error", rate)
		}
	}
}

// TestAmplitudeLevelsMonotonic verifies linear amplitude is in (0, 1] and increases with level.
func TestAmplitudeLevelsMonotonic(t *testing.T) {
	t.Parallel()

	prev := 0.0
	for level := MinAmplitudeLevel; level <= 0; level++ {
		amp := AmplitudeForLevel(level)
		if amp <= 0 || amp > 1.0 {
			t.Errorf("Level %d: amplitude %f out of (0, 1]", level, amp)
		}

		if amp <= prev {
			t.Errorf("Level %d: amplitude %f not above previous %f", level, amp, prev)
		}

		prev = amp
	}

	if AmplitudeForLevel(0) != 1.0 {
		t.Errorf("Expected unity gain at level 0, got %f", AmplitudeForLevel(0))
	}
}

// TestFrequencyClamping verifies stepping past either end is clamped and idempotent.
func TestFrequencyClamping(t *testing.T) {
	t.Parallel()

	c := newTestController(t, 44100.0, 2)
	maxLevel := c.MaxFrequencyLevel()

	c.StepFrequency(maxLevel * 2)
	if c.FrequencyLevel() != maxLevel {
		t.Fatalf("Expected frequency level %d after large step up, got %d", maxLevel, c.FrequencyLevel())
	}

	target := c.TargetFrequency()
	for range 5 {
		c.FrequencyUp()
		c.OctaveUp()
	}

	if c.FrequencyLevel() != maxLevel {
		t.Errorf("Expected frequency level to stay at %d, got %d", maxLevel, c.FrequencyLevel())
	}

	if c.TargetFrequency() != target {
		t.Errorf("Target frequency changed at ceiling: %f -> %f", target, c.TargetFrequency())
	}

	for range 20 {
		c.OctaveDown()
	}
	c.FrequencyDown()

	if c.FrequencyLevel() != 0 {
		t.Errorf("Expected frequency level 0 at floor, got %d", c.FrequencyLevel())
	}

	if math.Abs(c.FrequencyHz()-BaseFrequency) > 1e-9 {
		t.Errorf("Expected %f Hz at level 0, got %f", BaseFrequency, c.FrequencyHz())
	}
}

// TestAmplitudeClamping verifies amplitude stays in [MinAmplitudeLevel, 0].
func TestAmplitudeClamping(t *testing.T) {
	t.Parallel()

	c := newTestController(t, 44100.0, 3)

	for range 100 {
		c.AmplitudeUp()
	}

	if c.AmplitudeLevel() != 0 {
		t.Errorf("Expected amplitude level 0 at ceiling, got %d", c.AmplitudeLevel())
	}

	if c.TargetAmplitude() != 1.0 {
		t.Errorf("Expected unity target amplitude, got %f", c.TargetAmplitude())
	}

	for range 100 {
		c.AmplitudeDown()
	}

	if c.AmplitudeLevel() != MinAmplitudeLevel {
		t.Errorf("Expected amplitude level %d at floor, got %d", MinAmplitudeLevel, c.AmplitudeLevel())
	}

	if math.Abs(c.AmplitudeDB()-float64(MinAmplitudeLevel)) > 1e-9 {
		t.Errorf("Expected %d dB at floor, got %f", MinAmplitudeLevel, c.AmplitudeDB())
	}
}

// TestIncrementWithSteps verifies the pointer form applies a relative step.
func TestIncrementWithSteps(t *testing.T) {
	t.Parallel()

	c := newTestController(t, 44100.0, 4)
	c.StepFrequency(-1000)
	c.StepAmplitude(-1000)

	steps := 7
	c.IncrementFrequency(&steps)
	c.IncrementAmplitude(&steps)

	if c.FrequencyLevel() != 7 {
		t.Errorf("Expected frequency level 7, got %d", c.FrequencyLevel())
	}

	if c.AmplitudeLevel() != MinAmplitudeLevel+7 {
		t.Errorf("Expected amplitude level %d, got %d", MinAmplitudeLevel+7, c.AmplitudeLevel())
	}

	expected := AngularFrequency(FrequencyForLevel(7))
	if math.Abs(c.TargetFrequency()-expected) > 1e-9 {
		t.Errorf("Expected target %f rad/s, got %f", expected, c.TargetFrequency())
	}
}

// TestRandomResetCoverage verifies random resets stay in range and reach every level.
func TestRandomResetCoverage(t *testing.T) {
	t.Parallel()

	c := newTestController(t, 44100.0, 5)
	maxLevel := c.MaxFrequencyLevel()

	freqSeen := make(map[int]bool)
	ampSeen := make(map[int]bool)

	for range 10000 {
		c.IncrementFrequency(nil)
		c.IncrementAmplitude(nil)

		f := c.FrequencyLevel()
		a := c.AmplitudeLevel()

		if f < 0 || f > maxLevel {
			t.Fatalf("Frequency level %d outside [0, %d]", f, maxLevel)
		}

		if a < MinAmplitudeLevel || a > 0 {
			t.Fatalf("Amplitude level %d outside [%d, 0]", a, MinAmplitudeLevel)
		}

		freqSeen[f] = true
		ampSeen[a] = true
	}

	if len(freqSeen) != maxLevel+1 {
		t.Errorf("Expected all %d frequency levels, saw %d", maxLevel+1, len(freqSeen))
	}

	if len(ampSeen) != -MinAmplitudeLevel+1 {
		t.Errorf("Expected all %d amplitude levels, saw %d", -MinAmplitudeLevel+1, len(ampSeen))
	}
}

// TestSnapshotResponse verifies the record reflects the pre-reset levels and a new trial starts.
func TestSnapshotResponse(t *testing.T) {
	t.Parallel()

	c := newTestController(t, 44100.0, 6)

	stamp := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))
	c.SetClock(func() time.Time { return stamp })

	freqLevel := c.FrequencyLevel()
	ampLevel := c.AmplitudeLevel()
	freqHz := c.FrequencyHz()

	rec := c.SnapshotResponse()

	if math.Abs(rec.FrequencyHz-freqHz) > 1e-9 {
		t.Errorf("Expected record frequency %f, got %f", freqHz, rec.FrequencyHz)
	}

	if math.Abs(rec.FrequencyHz-FrequencyForLevel(freqLevel)) > 1e-9 {
		t.Errorf("Record frequency %f does not match level %d", rec.FrequencyHz, freqLevel)
	}

	if math.Round(rec.AmplitudeDB) != float64(ampLevel) {
		t.Errorf("Expected record amplitude %d dB, got %f", ampLevel, rec.AmplitudeDB)
	}

	if !rec.Time.Equal(stamp) || rec.Time.Location() != time.UTC {
		t.Errorf("Expected UTC timestamp %v, got %v", stamp.UTC(), rec.Time)
	}

	if c.FrequencyLevel() == freqLevel && c.AmplitudeLevel() == ampLevel {
		t.Errorf("Expected a new level pair after response, still (%d, %d)", freqLevel, ampLevel)
	}
}

// TestInitialLevelsInRange verifies construction draws levels inside both ranges.
func TestInitialLevelsInRange(t *testing.T) {
	t.Parallel()

	for seed := range uint64(50) {
		c := newTestController(t, 48000.0, seed)

		if f := c.FrequencyLevel(); f < 0 || f > c.MaxFrequencyLevel() {
			t.Errorf("Seed %d: initial frequency level %d out of range", seed, f)
		}

		if a := c.AmplitudeLevel(); a < MinAmplitudeLevel || a > 0 {
			t.Errorf("Seed %d: initial amplitude level %d out of range", seed, a)
		}

		if c.TargetAmplitude() <= 0 || c.TargetFrequency() <= 0 {
			t.Errorf("Seed %d: targets not published at construction", seed)
		}
	}
}
