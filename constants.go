package main

import "time"

// Audio defaults
const (
	defaultSampleRate = 44100
	defaultChannels   = 2
	defaultBufferMS   = 20

	// maxChannels bounds audio.channels to layouts oto can open.
	maxChannels = 8

	bytesPerSample = 4 // float32
)

// Screen refresh
const (
	redrawInterval = 50 * time.Millisecond
)
