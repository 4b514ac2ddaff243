package server

import (
	"fmt"
	"testing"
	"time"
)

// countingLogger records how many messages reached it
type countingLogger struct {
	messages []string
}

func (l *countingLogger) record(format string, args ...interface{}) {
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func (l *countingLogger) Debugf(format string, args ...interface{})   { l.record(format, args...) }
func (l *countingLogger) Infof(format string, args ...interface{})    { l.record(format, args...) }
func (l *countingLogger) Noticef(format string, args ...interface{})  { l.record(format, args...) }
func (l *countingLogger) Warningf(format string, args ...interface{}) { l.record(format, args...) }
func (l *countingLogger) Errorf(format string, args ...interface{})   { l.record(format, args...) }

func TestWebLogger_BasicLogging(t *testing.T) {
	// Create a channel to receive console messages
	messageChan := make(chan ConsoleMessage, 10)
	next := &countingLogger{}
	logger := NewWebLogger(next, messageChan)

	testMessage := "Test log message"
	logger.Infof("%s", testMessage)

	select {
	case msg := <-messageChan:
		if msg.Message != testMessage {
			t.Errorf("Expected message '%s', got '%s'", testMessage, msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}

	if len(next.messages) != 1 || next.messages[0] != testMessage {
		t.Errorf("Expected message passed to the server log, got %v", next.messages)
	}
}

func TestWebLogger_Levels(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(nil, messageChan)

	tests := []struct {
		log   func(string, ...interface{})
		level string
	}{
		{logger.Infof, "info"},
		{logger.Noticef, "info"},
		{logger.Warningf, "warning"},
		{logger.Errorf, "error"},
	}

	for _, tt := range tests {
		tt.log("message")
		select {
		case msg := <-messageChan:
			if msg.Level != tt.level {
				t.Errorf("Expected level '%s', got '%s'", tt.level, msg.Level)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for %s message", tt.level)
		}
	}

	// Debug output stays on the server
	logger.Debugf("debug")
	select {
	case msg := <-messageChan:
		t.Errorf("Debug message reached the console: %v", msg)
	default:
	}
}

func TestWebLogger_MultipleMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(nil, messageChan)

	// Send multiple messages
	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Infof("%s", msg)
	}

	// Collect all messages
	var receivedMessages []string
	timeout := time.After(200 * time.Millisecond)
	for i := 0; i < len(messages); i++ {
		select {
		case msg := <-messageChan:
			receivedMessages = append(receivedMessages, msg.Message)
		case <-timeout:
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}

	for i, expected := range messages {
		if receivedMessages[i] != expected {
			t.Errorf("Message %d: expected '%s', got '%s'", i, expected, receivedMessages[i])
		}
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	// Create a small channel that will fill up
	messageChan := make(chan ConsoleMessage, 1)
	next := &countingLogger{}
	logger := NewWebLogger(next, messageChan)

	logger.Errorf("Message 1")

	// These must not block even though the channel is full
	logger.Errorf("Message 2")
	logger.Errorf("Message 3")

	if len(messageChan) != 1 {
		t.Errorf("Expected one buffered message, got %d", len(messageChan))
	}
	if len(next.messages) != 3 {
		t.Errorf("Expected every message in the server log, got %d", len(next.messages))
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	// Logger with nil channel should not panic
	logger := NewWebLogger(nil, nil)
	logger.Errorf("Test message with nil channel")
}

func TestWebLogger_FormattedMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger(nil, messageChan)

	logger.Errorf("failed to load %s: %v", "teddy_bear.glb", "file not found")

	select {
	case msg := <-messageChan:
		expected := "failed to load teddy_bear.glb: file not found"
		if msg.Message != expected {
			t.Errorf("Expected formatted message '%s', got '%s'", expected, msg.Message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for formatted message")
	}
}
