package dto

// ChatRequest is the single conversational endpoint's input.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
	UserId  string `json:"user_id" validate:"required,max=64"`
}

// ChatResponse carries the assistant's reply for one turn.
type ChatResponse struct {
	Interpretation string `json:"interpretation"`
}

// HealthResponse reports liveness plus the live usage counters.
type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
	CallsToday     int    `json:"calls_today"`
	DailyCap       int    `json:"daily_cap"`
}
