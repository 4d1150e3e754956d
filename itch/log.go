package itch

import (
	"log"
	"os"
)

// Logger is the minimal logging surface the stream needs. Plug in any
// leveled logger by wrapping it in this interface.
type Logger interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type stdLog struct {
	logger *log.Logger
}

var _ Logger = (*stdLog)(nil)

// Info and Warn are dropped: the stdlib log package has no levels, and a
// decoder chewing through millions of frames must stay quiet by default.
// Use WithLogger to see everything.
func (s *stdLog) Infof(format string, v ...interface{}) {}

func (s *stdLog) Warnf(format string, v ...interface{}) {}

func (s *stdLog) Errorf(format string, v ...interface{}) {
	s.logger.Printf(format, v...)
}

// DefaultLogger returns a logger that only prints errors, to stderr.
func DefaultLogger() Logger {
	return &stdLog{logger: log.New(os.Stderr, "", log.LstdFlags)}
}
