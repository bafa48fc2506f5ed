package trace

import (
	"fmt"
	"time"
)

// ReadinessPolicy decides whether a trace whose root closed at rootClose can
// be emitted once the watermark has reached watermark.
//
// Readiness is a heuristic: it assumes that once a later root has closed, no
// further spans arrive for traces whose root closed earlier. Inputs with
// looser ordering need a policy with slack, such as Lag.
type ReadinessPolicy interface {
	Ready(rootClose, watermark time.Time) bool
	String() string
}

// StrictlyBefore marks a trace ready as soon as its root closed strictly
// before the watermark. The trace holding the watermark is never ready.
type StrictlyBefore struct{}

func (StrictlyBefore) Ready(rootClose, watermark time.Time) bool {
	return rootClose.Before(watermark)
}

func (StrictlyBefore) String() string { return "strictly-before" }

// Lag marks a trace ready once the watermark is more than Window past its
// root close time.
type Lag struct {
	Window time.Duration
}

func (l Lag) Ready(rootClose, watermark time.Time) bool {
	return rootClose.Add(l.Window).Before(watermark)
}

func (l Lag) String() string { return fmt.Sprintf("lag(%s)", l.Window) }

// PolicyFor returns StrictlyBefore for a zero window and Lag otherwise
func PolicyFor(window time.Duration) ReadinessPolicy {
	if window <= 0 {
		return StrictlyBefore{}
	}
	return Lag{Window: window}
}
