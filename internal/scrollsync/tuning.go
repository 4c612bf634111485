package scrollsync

import "time"

// Tuning holds the convergence policy constants. They are configuration, not
// inline magic numbers, so the retry schedule and pin tolerances can be tuned
// and tested independently.
type Tuning struct {
	// MaxAttempts is the number of verification attempts per session.
	MaxAttempts int

	// FirstDelay is the wait before the first measurement. Subsequent
	// attempts wait RetryDelay, which is longer to let deferred content
	// (image layout and the like) settle.
	FirstDelay time.Duration
	RetryDelay time.Duration

	// BelowTolerance is how far below the viewport top the heading may sit
	// before a correction is issued.
	BelowTolerance float64

	// AboveTolerance is how far above the viewport top the heading may
	// overshoot. It is much stricter than BelowTolerance: a heading cut off
	// past the top reads worse than one slightly low.
	AboveTolerance float64
}

// DefaultTuning returns the stock convergence policy.
func DefaultTuning() Tuning {
	return Tuning{
		MaxAttempts:    2,
		FirstDelay:     160 * time.Millisecond,
		RetryDelay:     260 * time.Millisecond,
		BelowTolerance: 12,
		AboveTolerance: 1.5,
	}
}

// sanitize fills unusable fields with defaults.
func (t Tuning) sanitize() Tuning {
	def := DefaultTuning()
	if t.MaxAttempts <= 0 {
		t.MaxAttempts = def.MaxAttempts
	}
	if t.FirstDelay <= 0 {
		t.FirstDelay = def.FirstDelay
	}
	if t.RetryDelay <= 0 {
		t.RetryDelay = def.RetryDelay
	}
	if t.BelowTolerance <= 0 {
		t.BelowTolerance = def.BelowTolerance
	}
	if t.AboveTolerance <= 0 {
		t.AboveTolerance = def.AboveTolerance
	}
	return t
}
