//go:build !headless

package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"hearing-test/dsp"
)

// OtoDevice plays a ToneSynthesizer through the system audio output.
type OtoDevice struct {
	ctx     *oto.Context
	player  *oto.Player
	reader  *toneReader
	started bool
	mutex   sync.Mutex // Only for setup/control operations
}

// NewOtoDevice opens the audio output at the synthesizer's sample rate and channel count.
// bufferMS of 0 leaves the buffer size to oto.
func NewOtoDevice(synth *dsp.ToneSynthesizer, bufferMS int) (*OtoDevice, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(synth.SampleRate()),
		ChannelCount: synth.Channels(),
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferMS) * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}
	<-ready

	reader := newToneReader(synth)

	return &OtoDevice{
		ctx:    ctx,
		player: ctx.NewPlayer(reader),
		reader: reader,
	}, nil
}

func (d *OtoDevice) Start() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.started && d.player != nil {
		d.player.Play()
		d.started = true
	}
}

func (d *OtoDevice) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.started && d.player != nil {
		d.player.Pause()
		d.started = false
	}
}

func (d *OtoDevice) Close() error {
	d.Stop()

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.player == nil {
		return nil
	}

	err := d.player.Close()
	d.player = nil

	return err
}

func (d *OtoDevice) IsStarted() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.started
}

// Err reports a stream failure from synthesis or from oto itself.
func (d *OtoDevice) Err() error {
	if err := d.reader.Err(); err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.player != nil {
		return d.player.Err()
	}

	return nil
}
