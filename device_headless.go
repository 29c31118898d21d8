//go:build headless

package main

import "hearing-test/dsp"

// OtoDevice is a silent stand-in for builds without an audio backend.
// Nothing pulls from the reader, so no buffers are rendered.
type OtoDevice struct {
	reader  *toneReader
	started bool
}

func NewOtoDevice(synth *dsp.ToneSynthesizer, bufferMS int) (*OtoDevice, error) {
	return &OtoDevice{reader: newToneReader(synth)}, nil
}

func (d *OtoDevice) Start() {
	d.started = true
}

func (d *OtoDevice) Stop() {
	d.started = false
}

func (d *OtoDevice) Close() error {
	d.started = false
	return nil
}

func (d *OtoDevice) IsStarted() bool {
	return d.started
}

// Err reports a synthesis failure if something did read from the device.
func (d *OtoDevice) Err() error {
	return d.reader.Err()
}
