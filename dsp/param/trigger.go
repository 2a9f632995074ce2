package param

import "sync/atomic"

// Trigger is a one-shot cross-thread flag used to restart state
// machines (an envelope retrigger, a sampler gate) from outside the
// audio thread. A controller fires it; the consuming unit clears it
// with a compare-and-swap, so every fire is observed at most once and
// double-triggering cannot happen.
type Trigger struct {
	fired atomic.Bool
}

// NewTrigger returns an unarmed trigger.
func NewTrigger() *Trigger {
	return &Trigger{}
}

// Fire arms the trigger. Firing an already armed trigger is a no-op.
func (t *Trigger) Fire() {
	t.fired.Store(true)
}

// Consume reports whether the trigger was armed and clears it. For any
// single Fire, at most one Consume call returns true.
func (t *Trigger) Consume() bool {
	return t.fired.CompareAndSwap(true, false)
}
