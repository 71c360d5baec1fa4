package flow

import (
	"strings"
	"testing"
	"time"

	"finance-chatbot-be/pkg/store"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig())
}

func TestPayableRateCurve(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		tenure int
		want   float64
	}{
		{12, 0.0470},
		{24, 0.09404},
		{1, 0.0470 - 11*0.00392},
	}
	for _, tt := range tests {
		got := e.PayableRate(tt.tenure)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("PayableRate(%d) = %v, want %v", tt.tenure, got, tt.want)
		}
	}
}

func TestCalculateSchedule(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

	s := e.Calculate(100000, 24, now)

	if s.Total != 109404.00 {
		t.Errorf("Total = %v, want 109404.00", s.Total)
	}
	if s.Monthly != 4558.50 {
		t.Errorf("Monthly = %v, want 4558.50", s.Monthly)
	}
	wantFirst := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !s.FirstDue.Equal(wantFirst) {
		t.Errorf("FirstDue = %v, want %v", s.FirstDue, wantFirst)
	}
	wantLast := time.Date(2028, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !s.LastDue.Equal(wantLast) {
		t.Errorf("LastDue = %v, want %v", s.LastDue, wantLast)
	}
}

func TestCalculateDecemberRollsIntoNextYear(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC)

	s := e.Calculate(10000, 6, now)

	wantFirst := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !s.FirstDue.Equal(wantFirst) {
		t.Errorf("FirstDue = %v, want %v", s.FirstDue, wantFirst)
	}
}

func advance(t *testing.T, e *Engine, session *store.Session, input string) Result {
	t.Helper()
	return e.Advance(session, input)
}

func TestFlowHappyPath(t *testing.T) {
	e := newTestEngine()
	session := &store.Session{UserID: "u1"}

	if !e.ShouldStart("can you calculate my emi") {
		t.Fatal("expected start keyword detection")
	}
	opening := e.Start(session)
	if session.ActiveFlow == nil || session.ActiveFlow.Step != StepCategory {
		t.Fatal("flow did not start at the category step")
	}
	if !strings.Contains(opening, "retail") {
		t.Errorf("opening prompt %q should mention retail", opening)
	}

	res := advance(t, e, session, "retail please")
	if session.ActiveFlow.Step != StepNationality {
		t.Fatalf("step = %q, want nationality", session.ActiveFlow.Step)
	}

	res = advance(t, e, session, "i am qatari")
	if session.ActiveFlow.Step != StepProduct {
		t.Fatalf("step = %q, want product", session.ActiveFlow.Step)
	}
	if session.Facts.Nationality != store.NationalityQatari {
		t.Errorf("nationality fact = %q, want Qatari", session.Facts.Nationality)
	}

	res = advance(t, e, session, "a car")
	if session.ActiveFlow.Step != StepAmount {
		t.Fatalf("step = %q, want amount", session.ActiveFlow.Step)
	}

	res = advance(t, e, session, "100,000")
	if session.ActiveFlow.Step != StepTenure {
		t.Fatalf("step = %q, want tenure", session.ActiveFlow.Step)
	}

	res = advance(t, e, session, "24 months")
	if session.ActiveFlow.Step != StepPostCalc {
		t.Fatalf("step = %q, want post_calc", session.ActiveFlow.Step)
	}
	if !strings.Contains(res.Reply, "109,404") {
		t.Errorf("summary %q should contain the total 109,404", res.Reply)
	}
	if !strings.Contains(res.Reply, "4,558.5") {
		t.Errorf("summary %q should contain the monthly 4,558.5", res.Reply)
	}
}

func TestFlowCorporateEndsAtBranches(t *testing.T) {
	e := newTestEngine()
	session := &store.Session{UserID: "u1"}
	e.Start(session)

	res := advance(t, e, session, "corporate")
	if !res.Done {
		t.Fatal("corporate path must end the flow")
	}
	if session.ActiveFlow != nil {
		t.Fatal("flow state must be cleared")
	}
	if !strings.Contains(res.Reply, "branches") {
		t.Errorf("reply %q should point to branches", res.Reply)
	}
}

func TestFlowCancelFromAnyStep(t *testing.T) {
	e := newTestEngine()

	for _, step := range []string{StepCategory, StepNationality, StepAmount, StepTenure} {
		session := &store.Session{UserID: "u1"}
		e.Start(session)
		session.ActiveFlow.Step = step

		res := advance(t, e, session, "cancel that")
		if !res.Done {
			t.Errorf("cancel at %q must end the flow", step)
		}
		if session.ActiveFlow != nil {
			t.Errorf("cancel at %q must clear the flow state", step)
		}
	}
}

func TestFlowRepromptsOnInvalidInput(t *testing.T) {
	e := newTestEngine()
	session := &store.Session{UserID: "u1"}
	e.Start(session)
	advance(t, e, session, "retail")
	advance(t, e, session, "expat")
	advance(t, e, session, "vehicle")

	// Below minimum amount.
	res := advance(t, e, session, "2000")
	if session.ActiveFlow.Step != StepAmount {
		t.Fatal("invalid amount must keep the amount step")
	}
	if !strings.Contains(res.Reply, "5,000") {
		t.Errorf("reply %q should restate the minimum", res.Reply)
	}

	advance(t, e, session, "50000")

	// Out-of-range tenure.
	res = advance(t, e, session, "60")
	if session.ActiveFlow.Step != StepTenure {
		t.Fatal("invalid tenure must keep the tenure step")
	}

	// Non-integer tenure.
	res = advance(t, e, session, "12.5")
	if session.ActiveFlow.Step != StepTenure {
		t.Fatal("fractional tenure must keep the tenure step")
	}
}

func TestFlowPostCalcAlwaysFallsThrough(t *testing.T) {
	e := newTestEngine()

	// Every post-calc input leaves calculator mode; whether it restarts is
	// the caller's call, made only after the knowledge base had its chance.
	for _, input := range []string{"calculate another one", "what are your working hours?", "emi documents"} {
		session := &store.Session{UserID: "u1"}
		e.Start(session)
		advance(t, e, session, "retail")
		advance(t, e, session, "qatari")
		advance(t, e, session, "vehicle")
		advance(t, e, session, "100000")
		advance(t, e, session, "24")

		res := advance(t, e, session, input)
		if res.Handled {
			t.Errorf("post-calc input %q must fall through to normal handling", input)
		}
		if session.ActiveFlow != nil {
			t.Errorf("post-calc input %q must clear the flow state", input)
		}
	}
}

func TestWantsRestart(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		text string
		want bool
	}{
		{"again please", true},
		{"one more", true},
		{"calculate another one", true},
		{"EMI", true},
		{"what are your working hours?", false},
		{"thanks, that's all", false},
	}
	for _, tt := range tests {
		if got := e.WantsRestart(tt.text); got != tt.want {
			t.Errorf("WantsRestart(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
