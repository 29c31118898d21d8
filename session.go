package main

import (
	"go.uber.org/zap"

	"hearing-test/dsp"
	"hearing-test/triallog"
)

// Session applies listener actions to the level controller and the trial log.
// It runs on the input goroutine only; the audio goroutine sees the controller's
// published targets and nothing else.
type Session struct {
	levels *dsp.LevelController
	log    *triallog.Log
	logger *zap.Logger

	lastRecord *dsp.TrialRecord
}

func NewSession(levels *dsp.LevelController, log *triallog.Log, logger *zap.Logger) *Session {
	return &Session{levels: levels, log: log, logger: logger}
}

// Apply performs action and reports whether the session should end.
func (s *Session) Apply(action Action) (quit bool) {
	if fn, ok := levelActions[action]; ok {
		fn(s.levels)
		s.logger.Debug("level changed",
			zap.Stringer("action", action),
			zap.Int("frequency_level", s.levels.FrequencyLevel()),
			zap.Int("amplitude_level", s.levels.AmplitudeLevel()),
		)
		return false
	}

	switch action {
	case ActionRespond:
		s.respond()
	case ActionQuit:
		s.Close()
		return true
	}

	return false
}

// respond logs the current tone and starts the next trial.
func (s *Session) respond() {
	rec := s.levels.SnapshotResponse()
	s.lastRecord = &rec

	if err := s.log.Write(rec); err != nil {
		s.logger.Error("failed to write trial record", zap.Error(err),
			zap.Float64("frequency_hz", rec.FrequencyHz),
			zap.Float64("amplitude_db", rec.AmplitudeDB),
		)
		return
	}

	s.logger.Debug("response recorded", zap.Int("trial", s.log.Count()))
}

// Close closes the trial log. Safe to call more than once.
func (s *Session) Close() {
	if err := s.log.Close(); err != nil {
		s.logger.Error("failed to close trial log", zap.Error(err))
	}
}

// Trials returns the number of responses logged this session.
func (s *Session) Trials() int {
	return s.log.Count()
}

// LastRecord returns the most recent response, if any.
func (s *Session) LastRecord() (dsp.TrialRecord, bool) {
	if s.lastRecord == nil {
		return dsp.TrialRecord{}, false
	}

	return *s.lastRecord, true
}
