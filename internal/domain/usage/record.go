// Package usage — Task 5.1: AI usage accounting.
// One Record per routed request (success or classified failure), published
// on the event bus by the assistant service and persisted by the Recorder.
package usage

import "time"

// TopicRequestCompleted is the event bus topic carrying Record payloads.
const TopicRequestCompleted = "ai.request.completed"

// Record is the accounting row for one routed AI request.
type Record struct {
	CallerID         string
	Provider         string // empty when no provider answered
	Model            string
	PromptTokens     int
	CompletionTokens int
	ErrorKind        string // empty on success
	At               time.Time
}
