// Task 8.3: Safe fallback replies.
package aiclient

import "time"

// FallbackProvider marks replies synthesized locally after the retry budget
// is exhausted, so callers and logs can tell them from real completions.
const FallbackProvider = "fallback"

// fallbackText maps a failure code to a reply safe to show an end user.
// Raw error detail never reaches the conversation.
func fallbackText(code string) string {
	switch code {
	case codeValidation:
		return "I couldn't make sense of that request. Could you rephrase it?"
	case codeUnauthorized:
		return "I can't verify who you are right now. Please sign in again."
	case codeRateLimited:
		return "I'm handling a lot of requests right now. Give me a moment and try again."
	default:
		return "My AI services are taking a quick break. Try again in a moment!"
	}
}

// fallbackEnvelope builds the reply returned when no real completion could
// be obtained. It is shaped exactly like a success so callers never branch.
func fallbackEnvelope(code string) Envelope {
	return Envelope{
		Text:      fallbackText(code),
		Provider:  FallbackProvider,
		Timestamp: time.Now().UTC(),
	}
}
