// Package checkout models the checkout flow as an explicit stage machine.
//
// The storefront's screens form a forward-only pipeline: Cart → Login →
// Shipping → Payment → Review → Submitted. Instead of each screen checking
// its own prerequisite and redirecting, a single gate function answers
// "which stage may this session actually enter?" — redirecting backward to
// the nearest stage whose prerequisites are met. There is no error state;
// backward redirect is the only recovery mechanism.
package checkout

import "github.com/hollowbeak/storefront/internal/domain/cart"

// Stage identifies one step of the checkout pipeline.
type Stage string

const (
	StageCart      Stage = "cart"
	StageLogin     Stage = "login"
	StageShipping  Stage = "shipping"
	StagePayment   Stage = "payment"
	StageReview    Stage = "review"
	StageSubmitted Stage = "submitted"
)

// Valid reports whether s names a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageCart, StageLogin, StageShipping, StagePayment, StageReview, StageSubmitted:
		return true
	}
	return false
}

// gate describes when a stage may be entered and where to redirect when it
// may not. The met predicate is cumulative: it covers the stage's own
// prerequisite and everything upstream of it.
type gate struct {
	met      func(s *cart.State, authenticated bool) bool
	fallback Stage
}

// transitions is the single transition table for the pipeline. Stages absent
// from the table (cart, login) may always be entered.
var transitions = map[Stage]gate{
	StageShipping: {
		met:      func(_ *cart.State, authenticated bool) bool { return authenticated },
		fallback: StageLogin,
	},
	StagePayment: {
		met: func(s *cart.State, authenticated bool) bool {
			return authenticated && s.ReadyForPayment()
		},
		fallback: StageShipping,
	},
	StageReview: {
		met: func(s *cart.State, authenticated bool) bool {
			return authenticated && s.ReadyForReview()
		},
		fallback: StagePayment,
	},
	// Submitted is terminal and only reachable through a successful order
	// submission, never by navigation.
	StageSubmitted: {
		met:      func(_ *cart.State, _ bool) bool { return false },
		fallback: StageReview,
	},
}

// Gate resolves the stage a session may actually enter when it asks for
// target, redirecting backward until a reachable stage is found. The
// returned bool reports whether a redirect happened.
func Gate(state *cart.State, authenticated bool, target Stage) (Stage, bool) {
	current := target
	for {
		g, gated := transitions[current]
		if !gated || g.met(state, authenticated) {
			return current, current != target
		}
		current = g.fallback
	}
}
