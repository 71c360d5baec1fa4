package flow

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"finance-chatbot-be/pkg/store"
)

// EMI flow steps, advanced one slot per turn.
const (
	KindEMI = "emi"

	StepCategory    = "category"
	StepNationality = "nationality"
	StepProduct     = "product"
	StepAmount      = "amount"
	StepTenure      = "tenure"
	StepPostCalc    = "post_calc"
)

// Config carries the calculator constraints and rate curve.
type Config struct {
	MinAmount float64
	MinTenure int
	MaxTenure int
	BaseRate  float64
	RateStep  float64
}

func DefaultConfig() Config {
	return Config{
		MinAmount: 5000,
		MinTenure: 1,
		MaxTenure: 48,
		BaseRate:  0.0470,
		RateStep:  0.00392,
	}
}

// Result is the outcome of feeding one user turn into an active flow.
type Result struct {
	Reply string
	// Done is true when the flow ended this turn (completed or cancelled).
	Done bool
	// Handled is false only when the turn should fall through to normal
	// message processing (post-calc input that is not a restart).
	Handled bool
}

var (
	startRe   = regexp.MustCompile(`\bemi\b|installment|instalment|calculate|calculator|monthly payment`)
	cancelRe  = regexp.MustCompile(`\bcancel\b|\bstop\b|\bexit\b|\bquit\b|never ?mind`)
	restartRe = regexp.MustCompile(`again|another|recalculate|new calculation|one more`)

	retailRe    = regexp.MustCompile(`retail|individual|personal|myself|consumer`)
	corporateRe = regexp.MustCompile(`corporate|company|business`)

	qatariRe = regexp.MustCompile(`qatari|qatar national`)
	expatRe  = regexp.MustCompile(`expat|expatriate|resident|foreigner`)

	numberRe = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
)

// Engine drives the EMI slot-filling conversation. Stateless itself; all
// per-user progress lives in the session's FlowState.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ShouldStart reports whether the turn asks for an EMI calculation.
func (e *Engine) ShouldStart(text string) bool {
	return startRe.MatchString(strings.ToLower(text))
}

// Start activates the flow on the session and returns the opening prompt.
func (e *Engine) Start(session *store.Session) string {
	session.ActiveFlow = &store.FlowState{
		Kind:      KindEMI,
		Step:      StepCategory,
		Collected: map[string]string{},
	}
	return "Sure, let's calculate your monthly installment. Is this for retail (individual) or corporate financing?"
}

// Advance feeds one user turn into the active flow. The session's FlowState
// is mutated in place and cleared when the flow ends.
func (e *Engine) Advance(session *store.Session, input string) Result {
	state := session.ActiveFlow
	if state == nil || state.Kind != KindEMI {
		return Result{}
	}
	text := strings.ToLower(strings.TrimSpace(input))

	if cancelRe.MatchString(text) {
		session.ActiveFlow = nil
		return Result{
			Reply:   "No problem, I've cancelled the calculation. Is there anything else I can help you with?",
			Done:    true,
			Handled: true,
		}
	}

	switch state.Step {
	case StepCategory:
		return e.stepCategory(session, state, text)
	case StepNationality:
		return e.stepNationality(session, state, text)
	case StepProduct:
		return e.stepProduct(session, state, text)
	case StepAmount:
		return e.stepAmount(state, text)
	case StepTenure:
		return e.stepTenure(session, state, text)
	case StepPostCalc:
		return e.stepPostCalc(session, state, text)
	}
	session.ActiveFlow = nil
	return Result{Done: true}
}

func (e *Engine) stepCategory(session *store.Session, state *store.FlowState, text string) Result {
	switch {
	case corporateRe.MatchString(text):
		session.ActiveFlow = nil
		return Result{
			Reply:   "Corporate financing is arranged at our branches only. Please visit your nearest branch and our corporate team will prepare a tailored offer for you.",
			Done:    true,
			Handled: true,
		}
	case retailRe.MatchString(text):
		state.Collected["category"] = "retail"
		state.Step = StepNationality
		return Result{Reply: "Great. Are you a Qatari national or an expat?", Handled: true}
	}
	return Result{Reply: "Please tell me whether this is retail (individual) or corporate financing.", Handled: true}
}

func (e *Engine) stepNationality(session *store.Session, state *store.FlowState, text string) Result {
	switch {
	case qatariRe.MatchString(text):
		state.Collected["nationality"] = store.NationalityQatari
	case expatRe.MatchString(text):
		state.Collected["nationality"] = store.NationalityExpat
	default:
		return Result{Reply: "Please answer Qatari or expat so I can apply the right terms.", Handled: true}
	}
	session.Facts.Nationality = state.Collected["nationality"]
	state.Step = StepProduct
	return Result{Reply: "Which product are you interested in? For example vehicle, personal, housing, marine or travel finance.", Handled: true}
}

func (e *Engine) stepProduct(session *store.Session, state *store.FlowState, text string) Result {
	product := parseProduct(text)
	if product == "" {
		return Result{Reply: "Please name the product: vehicle, personal, housing, marine or travel finance.", Handled: true}
	}
	state.Collected["product"] = product
	session.Facts.Product = product
	state.Step = StepAmount
	return Result{Reply: fmt.Sprintf("How much financing do you need, in QAR? The minimum is %s QAR.", formatAmount(e.cfg.MinAmount)), Handled: true}
}

func (e *Engine) stepAmount(state *store.FlowState, text string) Result {
	amount, ok := parseAmount(text)
	if !ok {
		return Result{Reply: "Please enter the amount as a number, for example 100000.", Handled: true}
	}
	if amount < e.cfg.MinAmount {
		return Result{
			Reply:   fmt.Sprintf("The minimum financing amount is %s QAR. Please enter a higher amount.", formatAmount(e.cfg.MinAmount)),
			Handled: true,
		}
	}
	state.Collected["amount"] = strconv.FormatFloat(amount, 'f', -1, 64)
	state.Step = StepTenure
	return Result{
		Reply:   fmt.Sprintf("Over how many months would you like to repay? Between %d and %d.", e.cfg.MinTenure, e.cfg.MaxTenure),
		Handled: true,
	}
}

func (e *Engine) stepTenure(session *store.Session, state *store.FlowState, text string) Result {
	tenure, ok := parseTenure(text)
	if !ok || tenure < e.cfg.MinTenure || tenure > e.cfg.MaxTenure {
		return Result{
			Reply:   fmt.Sprintf("Please enter a whole number of months between %d and %d.", e.cfg.MinTenure, e.cfg.MaxTenure),
			Handled: true,
		}
	}
	amount, _ := strconv.ParseFloat(state.Collected["amount"], 64)
	schedule := e.Calculate(amount, tenure, time.Now())
	state.Collected["tenure"] = strconv.Itoa(tenure)
	state.Step = StepPostCalc
	return Result{Reply: e.summarize(amount, tenure, schedule), Handled: true}
}

// stepPostCalc always leaves calculator mode: the turn is processed as a
// normal question first, and the caller restarts the flow only when the
// knowledge base had no answer and the input asked for another calculation.
func (e *Engine) stepPostCalc(session *store.Session, state *store.FlowState, text string) Result {
	session.ActiveFlow = nil
	return Result{Done: true}
}

// WantsRestart reports whether a post-calculation turn asks for another run.
func (e *Engine) WantsRestart(text string) bool {
	lower := strings.ToLower(text)
	return restartRe.MatchString(lower) || startRe.MatchString(lower)
}

// Schedule is one computed repayment plan.
type Schedule struct {
	Rate     float64
	Total    float64
	Monthly  float64
	FirstDue time.Time
	LastDue  time.Time
}

// PayableRate returns the flat payable rate for a tenure in months. Shorter
// tenures pay less; the curve is linear in the distance from 12 months.
func (e *Engine) PayableRate(tenureMonths int) float64 {
	return e.cfg.BaseRate - float64(12-tenureMonths)*e.cfg.RateStep
}

// Calculate computes the repayment schedule for a principal and tenure.
// The first installment falls on the 1st of the month after now.
func (e *Engine) Calculate(amount float64, tenureMonths int, now time.Time) Schedule {
	rate := e.PayableRate(tenureMonths)
	total := round2(amount * (1 + rate))
	monthly := round2(total / float64(tenureMonths))
	first := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, tenureMonths-1, 0)
	return Schedule{Rate: rate, Total: total, Monthly: monthly, FirstDue: first, LastDue: last}
}

func (e *Engine) summarize(amount float64, tenure int, s Schedule) string {
	return fmt.Sprintf(
		"Here is your plan: financing %s QAR over %d months comes to a total of %s QAR, "+
			"which is %s QAR per month. Your first installment would be due on %s and the last on %s. "+
			"Would you like to calculate another plan?",
		formatAmount(amount), tenure, formatAmount(s.Total), formatAmount(s.Monthly),
		s.FirstDue.Format("2 January 2006"), s.LastDue.Format("2 January 2006"),
	)
}

func parseProduct(text string) string {
	switch {
	case strings.Contains(text, "vehicle") || strings.Contains(text, "car") || strings.Contains(text, "auto"):
		return store.ProductVehicle
	case strings.Contains(text, "personal"):
		return store.ProductPersonal
	case strings.Contains(text, "housing") || strings.Contains(text, "home") || strings.Contains(text, "real estate"):
		return store.ProductHousing
	case strings.Contains(text, "marine") || strings.Contains(text, "boat"):
		return store.ProductMarine
	case strings.Contains(text, "travel") || strings.Contains(text, "umrah"):
		return store.ProductTravel
	case strings.Contains(text, "service"):
		return store.ProductServices
	}
	return ""
}

func parseAmount(text string) (float64, bool) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func parseTenure(text string) (int, bool) {
	m := numberRe.FindString(text)
	if m == "" || strings.Contains(m, ".") {
		return 0, false
	}
	tenure, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, false
	}
	return tenure, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatAmount renders a QAR figure with thousands separators and up to two
// decimals, dropping a trailing ".00".
func formatAmount(v float64) string {
	s := strconv.FormatFloat(round2(v), 'f', 2, 64)
	s = strings.TrimSuffix(s, ".00")
	intPart := s
	frac := ""
	if i := strings.Index(s, "."); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sb.String() + frac
}
