package diagnostics

import "github.com/sirupsen/logrus"

// Sink implements chat.ViolationSink, logging every violation and, when a
// Ledger is configured, persisting it too.
type Sink struct {
	player string
	ledger *Ledger
}

// NewSink builds a Sink for a specific player. ledger may be nil, in which
// case violations are logged but not persisted.
func NewSink(player string, ledger *Ledger) *Sink {
	return &Sink{player: player, ledger: ledger}
}

// ReportProtocolViolation implements chat.ViolationSink.
func (s *Sink) ReportProtocolViolation(err error) {
	logrus.WithField("player", s.player).Warn(err)
	if s.ledger != nil {
		s.ledger.Record("protocol", s.player, err)
	}
}

// ReportInvariantViolation implements chat.ViolationSink.
func (s *Sink) ReportInvariantViolation(err error) {
	logrus.WithField("player", s.player).Error(err)
	if s.ledger != nil {
		s.ledger.Record("invariant", s.player, err)
	}
}
