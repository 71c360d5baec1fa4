package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// TopicChatTurns is the pub/sub topic carrying completed chat turns.
const TopicChatTurns = "chat.turns"

// ChatTurnEvent is emitted after every answered turn, whatever branch
// produced the reply.
type ChatTurnEvent struct {
	UserID     string    `json:"user_id"`
	Branch     string    `json:"branch"`
	Category   string    `json:"category,omitempty"`
	Degraded   bool      `json:"degraded"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Reply branches recorded on turn events.
const (
	BranchFlow       = "flow"
	BranchAutoAnswer = "auto_answer"
	BranchLLM        = "llm"
	BranchFallback   = "fallback"
)

func (e ChatTurnEvent) EventType() string {
	return "CHAT_TURN"
}

func (e ChatTurnEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"branch":   e.Branch,
		"category": e.Category,
		"degraded": e.Degraded,
	}
}

func (e ChatTurnEvent) Timestamp() time.Time {
	return e.OccurredAt
}
