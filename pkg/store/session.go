package store

import (
	"time"

	"github.com/google/uuid"
)

// Nationality values recognized across extraction, ranking and flows.
const (
	NationalityQatari = "Qatari"
	NationalityExpat  = "Expat"
)

// Coarse product categories.
const (
	ProductVehicle   = "vehicle"
	ProductPersonal  = "personal"
	ProductHousing   = "housing"
	ProductServices  = "services"
	ProductCorporate = "corporate"
	ProductMarine    = "marine"
	ProductTravel    = "travel"
)

// Corporate sub-products.
const (
	SubProductCommodities     = "commodities"
	SubProductGoods           = "goods"
	SubProductFleetEquipment  = "fleet_equipment"
	SubProductRevolvingCredit = "revolving_credit"
)

// ApplicantFacts carries the structured applicant data used to materialize
// computed corpus responses and to drive eligibility answers. Zero values are
// always safe inputs.
type ApplicantFacts struct {
	Nationality       string  `json:"nationality"`
	Salary            float64 `json:"salary"`
	JobDurationMonths int     `json:"job_duration_months"`
	Age               int     `json:"age"`
}

// Facts is the sticky per-session conversational context. Each field persists
// across turns until a new detection overwrites it.
type Facts struct {
	Nationality string `json:"nationality"`
	Product     string `json:"product"`
	SubProduct  string `json:"sub_product"`
	Topic       string `json:"topic"`
}

// HistoryTurn is one user/bot exchange kept in the session window.
type HistoryTurn struct {
	Id       uuid.UUID `json:"id"`
	UserText string    `json:"user_text"`
	BotText  string    `json:"bot_text"`
	Topic    string    `json:"topic"`
	At       time.Time `json:"at"`
}

// MaxHistoryTurns caps the session history window (oldest evicted first).
const MaxHistoryTurns = 5

// FlowState tracks an in-progress slot-filling flow. Step names one pending
// step; a nil FlowState on the session means no flow is active.
type FlowState struct {
	Kind      string            `json:"kind"`
	Step      string            `json:"step"`
	Collected map[string]string `json:"collected"`
}

// Session is the in-memory conversational state for one opaque user id.
// Sessions are created lazily, mutated every turn, and reaped after idle
// timeout. There is no durable store behind them.
type Session struct {
	UserID       string        `json:"user_id"`
	LastActivity time.Time     `json:"last_activity"`
	Facts        Facts         `json:"facts"`
	History      []HistoryTurn `json:"history"`
	ActiveFlow   *FlowState    `json:"active_flow,omitempty"`
}

// AppendHistory records a turn and evicts the oldest once the window is full.
func (s *Session) AppendHistory(userText, botText, topic string) {
	s.History = append(s.History, HistoryTurn{
		Id:       uuid.New(),
		UserText: userText,
		BotText:  botText,
		Topic:    topic,
		At:       time.Now(),
	})
	if len(s.History) > MaxHistoryTurns {
		s.History = s.History[len(s.History)-MaxHistoryTurns:]
	}
}

// RecentHistory returns up to n most recent turns, oldest first.
func (s *Session) RecentHistory(n int) []HistoryTurn {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// MergeFacts applies newly detected facts on top of the sticky session facts.
// Empty fields leave the prior values untouched.
func (s *Session) MergeFacts(detected Facts) {
	if detected.Nationality != "" {
		s.Facts.Nationality = detected.Nationality
	}
	if detected.Product != "" {
		s.Facts.Product = detected.Product
	}
	if detected.SubProduct != "" {
		s.Facts.SubProduct = detected.SubProduct
	}
	if detected.Topic != "" {
		s.Facts.Topic = detected.Topic
	}
}

// ApplicantFacts derives calculator/eligibility inputs from the session.
// Unknown numerics default to zero; unknown nationality defaults to Qatari,
// matching the corpus' computed-response contract.
func (s *Session) ApplicantFacts() ApplicantFacts {
	nationality := s.Facts.Nationality
	if nationality == "" {
		nationality = NationalityQatari
	}
	return ApplicantFacts{Nationality: nationality}
}
