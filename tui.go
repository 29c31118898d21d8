package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"hearing-test/dsp"
)

const (
	colDef    = termbox.ColorDefault
	colWhite  = termbox.ColorWhite
	colRed    = termbox.ColorRed
	colGreen  = termbox.ColorGreen
	colYellow = termbox.ColorYellow
	colCyan   = termbox.ColorCyan
)

// TUIState is what the status screen needs to draw a frame.
type TUIState struct {
	session    *Session
	levels     *dsp.LevelController
	synth      *dsp.ToneSynthesizer
	streamErr  func() error
	showLevels bool
	exit       bool
	err        error
}

var helpLines = []string{
	"Left/Right   frequency -/+ 1 semitone",
	"PgDn/PgUp    frequency -/+ 1 octave  (also , and .)",
	"Down/Up      amplitude -/+ 1 dB",
	"Space        I hear it (log and start next trial)",
	"Esc / q      quit",
}

// runTUI owns the terminal until the listener quits, the stream fails or ctx is done.
func runTUI(ctx context.Context, state *TUIState) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	done := make(chan struct{})
	defer close(done)

	eventQueue := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case eventQueue <- ev:
			case <-done:
				return
			}
		}
	}()
	defer termbox.Interrupt()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	draw(state)

	for !state.exit {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventQueue:
			switch ev.Type {
			case termbox.EventKey:
				handleKey(ev, state)
				draw(state)
			case termbox.EventResize:
				draw(state)
			case termbox.EventError:
				return fmt.Errorf("terminal input: %w", ev.Err)
			}
		case <-ticker.C:
			if err := state.streamErr(); err != nil {
				state.err = err
				state.exit = true
			} else {
				draw(state)
			}
		}
	}

	return state.err
}

func handleKey(ev termbox.Event, s *TUIState) {
	if s.session.Apply(actionForKey(ev)) {
		s.exit = true
	}
}

func draw(s *TUIState) {
	termbox.Clear(colDef, colDef)

	printTB(0, 0, colCyan, colDef, "Hearing Threshold Test")
	printTB(0, 1, colDef, colDef, "Adjust the tone until you can just hear it, then press Space.")
	printTB(0, 2, colDef, colDef, "--------------------------------------------------------------")

	for i, line := range helpLines {
		printTB(2, 4+i, colWhite, colDef, line)
	}

	y := 4 + len(helpLines) + 1
	printTB(0, y, colYellow, colDef, fmt.Sprintf("Responses logged: %d", s.session.Trials()))

	meters := s.synth.Meters()
	status := "playing"
	statusCol := colGreen
	if err := s.streamErr(); err != nil {
		status = err.Error()
		statusCol = colRed
	}
	printTB(0, y+1, colDef, colDef, "Audio: ")
	printTB(7, y+1, statusCol, colDef, fmt.Sprintf("%s (%d buffers)", status, meters.Buffers))

	if s.showLevels {
		drawLevels(0, y+3, s, meters)
	}

	termbox.Flush()
}

// drawLevels shows the current tone. Calibration only; see DisplayConfig.ShowLevels.
func drawLevels(x, y int, s *TUIState, meters dsp.SynthMeters) {
	printTB(x, y, colYellow, colDef, "Levels:")
	printTB(x+2, y+1, colDef, colDef, fmt.Sprintf("Frequency %9.2f Hz  (level %2d of %d)",
		s.levels.FrequencyHz(), s.levels.FrequencyLevel(), s.levels.MaxFrequencyLevel()))
	printTB(x+2, y+2, colDef, colDef, fmt.Sprintf("Amplitude %9.1f dB  (level %3d)",
		s.levels.AmplitudeDB(), s.levels.AmplitudeLevel()))

	peakDB := -60.0
	if meters.Peak > 1e-6 {
		peakDB = 20 * math.Log10(meters.Peak)
	}
	drawMeter(x+2, y+4, "Out  ", peakDB, colGreen)

	if rec, ok := s.session.LastRecord(); ok {
		printTB(x+2, y+6, colDef, colDef, "Last: "+formatLastRecord(rec))
	}
}

func formatLastRecord(rec dsp.TrialRecord) string {
	return fmt.Sprintf("%.2f Hz at %.0f dB", rec.FrequencyHz, rec.AmplitudeDB)
}

func drawMeter(x, y int, label string, db float64, color termbox.Attribute) {
	// Level logic: -60 to 0 dB range, -60 is empty
	barWidth := 40

	minDB := -60.0
	maxDB := 0.0
	if db < minDB {
		db = minDB
	}
	if db > maxDB {
		db = maxDB
	}
	filled := int((db - minDB) / (maxDB - minDB) * float64(barWidth))

	text := fmt.Sprintf("%s [%-6.1f dBFS] ", label, db)
	printTB(x, y, colDef, colDef, text)

	startX := x + runewidth.StringWidth(text)
	for i := 0; i < barWidth; i++ {
		ch := '░'
		if i < filled {
			ch = '█'
		}
		termbox.SetCell(startX+i, y, ch, color, colDef)
	}
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x += runewidth.RuneWidth(c)
	}
}
