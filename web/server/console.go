package server

import (
	"fmt"
	"time"

	"github.com/df07/go-scene-viewer/pkg/log"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements log.Logger by passing messages to another logger and
// copying them to a console channel
type WebLogger struct {
	next        log.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a web logger writing through next. A nil next drops
// server-side output.
func NewWebLogger(next log.Logger, consoleChan chan<- ConsoleMessage) log.Logger {
	if next == nil {
		next = log.Discard
	}
	return &WebLogger{
		next:        next,
		consoleChan: consoleChan,
	}
}

// Debugf only reaches the server log
func (wl *WebLogger) Debugf(format string, args ...interface{}) {
	wl.next.Debugf(format, args...)
}

// Infof implements log.Logger
func (wl *WebLogger) Infof(format string, args ...interface{}) {
	wl.next.Infof(format, args...)
	wl.send("info", format, args)
}

// Noticef implements log.Logger
func (wl *WebLogger) Noticef(format string, args ...interface{}) {
	wl.next.Noticef(format, args...)
	wl.send("info", format, args)
}

// Warningf implements log.Logger
func (wl *WebLogger) Warningf(format string, args ...interface{}) {
	wl.next.Warningf(format, args...)
	wl.send("warning", format, args)
}

// Errorf implements log.Logger
func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	wl.next.Errorf(format, args...)
	wl.send("error", format, args)
}

func (wl *WebLogger) send(level, format string, args []interface{}) {
	if wl.consoleChan == nil {
		return
	}

	// Send to web console without blocking the caller
	select {
	case wl.consoleChan <- ConsoleMessage{
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
		Level:     level,
	}:
	default:
		// Channel full, skip
	}
}
