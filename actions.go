package main

import (
	"github.com/nsf/termbox-go"

	"hearing-test/dsp"
)

// Action is one of the listener's inputs.
type Action int

const (
	ActionNone Action = iota
	ActionFrequencyDown
	ActionFrequencyUp
	ActionOctaveDown
	ActionOctaveUp
	ActionAmplitudeDown
	ActionAmplitudeUp
	ActionRespond
	ActionQuit
)

var actionNames = map[Action]string{
	ActionFrequencyDown: "frequency down",
	ActionFrequencyUp:   "frequency up",
	ActionOctaveDown:    "octave down",
	ActionOctaveUp:      "octave up",
	ActionAmplitudeDown: "amplitude down",
	ActionAmplitudeUp:   "amplitude up",
	ActionRespond:       "respond",
	ActionQuit:          "quit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}

	return "none"
}

// levelActions maps each level-changing action to its controller method.
// Respond and quit touch the trial log as well and are handled by the session.
//
//nolint:gochecknoglobals // Static dispatch table
var levelActions = map[Action]func(*dsp.LevelController){
	ActionFrequencyDown: (*dsp.LevelController).FrequencyDown,
	ActionFrequencyUp:   (*dsp.LevelController).FrequencyUp,
	ActionOctaveDown:    (*dsp.LevelController).OctaveDown,
	ActionOctaveUp:      (*dsp.LevelController).OctaveUp,
	ActionAmplitudeDown: (*dsp.LevelController).AmplitudeDown,
	ActionAmplitudeUp:   (*dsp.LevelController).AmplitudeUp,
}

//nolint:gochecknoglobals // Static key bindings
var (
	keyBindings = map[termbox.Key]Action{
		termbox.KeyArrowLeft:  ActionFrequencyDown,
		termbox.KeyArrowRight: ActionFrequencyUp,
		termbox.KeyPgdn:       ActionOctaveDown,
		termbox.KeyPgup:       ActionOctaveUp,
		termbox.KeyArrowDown:  ActionAmplitudeDown,
		termbox.KeyArrowUp:    ActionAmplitudeUp,
		termbox.KeySpace:      ActionRespond,
		termbox.KeyEsc:        ActionQuit,
		termbox.KeyCtrlC:      ActionQuit,
	}

	runeBindings = map[rune]Action{
		' ': ActionRespond,
		',': ActionOctaveDown,
		'<': ActionOctaveDown,
		'.': ActionOctaveUp,
		'>': ActionOctaveUp,
		'q': ActionQuit,
	}
)

// actionForKey looks up the action bound to a key event.
func actionForKey(ev termbox.Event) Action {
	if ev.Type != termbox.EventKey {
		return ActionNone
	}

	if ev.Ch != 0 {
		return runeBindings[ev.Ch]
	}

	return keyBindings[ev.Key]
}
