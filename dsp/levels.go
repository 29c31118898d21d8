package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// ErrSampleRateTooLow is returned when the Nyquist frequency does not leave room for
// more than one frequency level above BaseFrequency.
var ErrSampleRateTooLow = errors.New("sample rate too low for base frequency")

// Targets is the tone the synthesizer should be playing.
type Targets struct {
	Frequency float64 // rad/s
	Amplitude float64 // linear gain in (0, 1]
}

// TargetSource publishes Targets to the synthesizer.
// Implementations must be safe to call from the audio goroutine while being updated
// from another goroutine, and must return frequency and amplitude as one pair.
type TargetSource interface {
	Targets() Targets
}

// TrialRecord is the level pair in effect when the listener responded.
type TrialRecord struct {
	FrequencyHz float64
	AmplitudeDB float64
	Time        time.Time
}

// LevelController owns the discrete frequency and amplitude levels of the test tone.
//
// Mutators are meant to be called from the input goroutine. The resulting targets are
// published through atomics so the audio goroutine never takes mu.
type LevelController struct {
	mu sync.Mutex // Protects levels and rng

	maxFrequencyLevel int

	frequencyLevel int
	amplitudeLevel int

	rng *rand.Rand
	now func() time.Time

	targets atomic.Pointer[Targets] // Read by the synthesizer without mu
}

// NewLevelController creates a controller for sampleRate with both levels drawn at random
// from rng. A nil rng is replaced by a time-seeded source.
func NewLevelController(sampleRate float64, rng *rand.Rand) (*LevelController, error) {
	maxLevel := MaxFrequencyLevelFor(sampleRate)
	if maxLevel <= 0 {
		return nil, fmt.Errorf("%w: %.0f Hz gives Nyquist %.1f Hz, need above %.1f Hz",
			ErrSampleRateTooLow, sampleRate, sampleRate/2.0, BaseFrequency*semitoneRatio)
	}

	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	c := &LevelController{
		maxFrequencyLevel: maxLevel,
		rng:               rng,
		now:               time.Now,
	}

	c.mu.Lock()
	c.resetFrequencyLocked()
	c.resetAmplitudeLocked()
	c.publishLocked()
	c.mu.Unlock()

	return c, nil
}

// SetClock replaces the time source used to stamp trial records.
func (c *LevelController) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

// MaxFrequencyLevel returns the highest frequency level below Nyquist.
func (c *LevelController) MaxFrequencyLevel() int {
	return c.maxFrequencyLevel
}

// IncrementFrequency moves the frequency level by *steps, clamped to range.
// A nil steps draws a new uniformly random level instead.
func (c *LevelController) IncrementFrequency(steps *int) {
	if steps == nil {
		c.ResetFrequency()
		return
	}

	c.StepFrequency(*steps)
}

// IncrementAmplitude moves the amplitude level by *steps, clamped to range.
// A nil steps draws a new uniformly random level instead.
func (c *LevelController) IncrementAmplitude(steps *int) {
	if steps == nil {
		c.ResetAmplitude()
		return
	}

	c.StepAmplitude(*steps)
}

// StepFrequency moves the frequency level by n semitones, clamped to [0, MaxFrequencyLevel].
func (c *LevelController) StepFrequency(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setFrequencyLocked(clampLevel(c.frequencyLevel+n, 0, c.maxFrequencyLevel))
}

// StepAmplitude moves the amplitude level by n steps, clamped to [MinAmplitudeLevel, 0].
func (c *LevelController) StepAmplitude(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setAmplitudeLocked(clampLevel(c.amplitudeLevel+n, MinAmplitudeLevel, 0))
}

// ResetFrequency draws a uniformly random frequency level.
func (c *LevelController) ResetFrequency() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetFrequencyLocked()
	c.publishLocked()
}

// ResetAmplitude draws a uniformly random amplitude level.
func (c *LevelController) ResetAmplitude() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetAmplitudeLocked()
	c.publishLocked()
}

// FrequencyUp raises the tone by one semitone.
func (c *LevelController) FrequencyUp() { c.StepFrequency(1) }

// FrequencyDown lowers the tone by one semitone.
func (c *LevelController) FrequencyDown() { c.StepFrequency(-1) }

// OctaveUp raises the tone by one octave.
func (c *LevelController) OctaveUp() { c.StepFrequency(OctaveSteps) }

// OctaveDown lowers the tone by one octave.
func (c *LevelController) OctaveDown() { c.StepFrequency(-OctaveSteps) }

// AmplitudeUp makes the tone 1 dB louder.
func (c *LevelController) AmplitudeUp() { c.StepAmplitude(1) }

// AmplitudeDown makes the tone 1 dB quieter.
func (c *LevelController) AmplitudeDown() { c.StepAmplitude(-1) }

// SnapshotResponse records the current level pair and starts a new trial.
// Every logged response resets both levels, so a record never describes a stale trial.
func (c *LevelController) SnapshotResponse() TrialRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	record := TrialRecord{
		FrequencyHz: FrequencyForLevel(c.frequencyLevel),
		AmplitudeDB: LinearToDB(AmplitudeForLevel(c.amplitudeLevel)),
		Time:        c.now().UTC(),
	}

	c.resetFrequencyLocked()
	c.resetAmplitudeLocked()
	c.publishLocked()

	return record
}

// FrequencyLevel returns the current frequency level.
func (c *LevelController) FrequencyLevel() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frequencyLevel
}

// AmplitudeLevel returns the current amplitude level.
func (c *LevelController) AmplitudeLevel() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.amplitudeLevel
}

// Targets implements TargetSource.
func (c *LevelController) Targets() Targets {
	return *c.targets.Load()
}

// FrequencyHz returns the current target pitch in Hz.
func (c *LevelController) FrequencyHz() float64 {
	return c.TargetFrequency() / (2.0 * math.Pi)
}

// AmplitudeDB returns the current target gain in dB.
func (c *LevelController) AmplitudeDB() float64 {
	return LinearToDB(c.TargetAmplitude())
}

// TargetFrequency returns the published angular frequency in rad/s.
func (c *LevelController) TargetFrequency() float64 {
	return c.targets.Load().Frequency
}

// TargetAmplitude returns the published linear gain.
func (c *LevelController) TargetAmplitude() float64 {
	return c.targets.Load().Amplitude
}

// resetFrequencyLocked draws a level from the inclusive range without publishing it.
func (c *LevelController) resetFrequencyLocked() {
	c.frequencyLevel = c.rng.IntN(c.maxFrequencyLevel + 1)
}

// resetAmplitudeLocked draws a level from the inclusive range without publishing it.
func (c *LevelController) resetAmplitudeLocked() {
	c.amplitudeLevel = MinAmplitudeLevel + c.rng.IntN(-MinAmplitudeLevel+1)
}

func (c *LevelController) setFrequencyLocked(level int) {
	c.frequencyLevel = level
	c.publishLocked()
}

func (c *LevelController) setAmplitudeLocked(level int) {
	c.amplitudeLevel = level
	c.publishLocked()
}

// publishLocked swaps in both targets at once so a buffer never pairs a new pitch
// with a stale gain.
func (c *LevelController) publishLocked() {
	c.targets.Store(&Targets{
		Frequency: AngularFrequency(FrequencyForLevel(c.frequencyLevel)),
		Amplitude: AmplitudeForLevel(c.amplitudeLevel),
	})
}

func clampLevel(level, lo, hi int) int {
	return max(lo, min(level, hi))
}
