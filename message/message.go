// Package message defines the immutable record type carried from a logging
// framework adapter all the way down to a destination's service facade.
package message

// LogMessage is a single log event handed to a writer by its adapter. It is
// immutable once constructed: nothing downstream of addMessage mutates a
// LogMessage's fields.
type LogMessage struct {
	// Timestamp is the event time in epoch milliseconds.
	Timestamp int64
	// Payload is the UTF-8 encoded event text.
	Payload []byte
}

// New constructs a LogMessage from a timestamp and a UTF-8 string payload.
func New(timestampMillis int64, payload string) LogMessage {
	return LogMessage{Timestamp: timestampMillis, Payload: []byte(payload)}
}

// Size is the UTF-8 byte length of the payload, the unit every per-service
// batching cap is expressed in.
func (m LogMessage) Size() int {
	return len(m.Payload)
}

// Truncate returns a copy of m with its payload trimmed to at most maxBytes.
func (m LogMessage) Truncate(maxBytes int) LogMessage {
	if len(m.Payload) <= maxBytes {
		return m
	}
	truncated := make([]byte, maxBytes)
	copy(truncated, m.Payload[:maxBytes])
	return LogMessage{Timestamp: m.Timestamp, Payload: truncated}
}
