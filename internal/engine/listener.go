package engine

import "github.com/ringside/simulator/pkg/core"

// Listener receives the engine's output after each tick. Listeners must not
// call back into the engine.
type Listener interface {
	OnHit(core.AttackResult)
	OnPhase(core.PhaseChange)
	OnFrame(core.Frame)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Hit   func(core.AttackResult)
	Phase func(core.PhaseChange)
	Frame func(core.Frame)
}

func (f ListenerFuncs) OnHit(r core.AttackResult) {
	if f.Hit != nil {
		f.Hit(r)
	}
}

func (f ListenerFuncs) OnPhase(c core.PhaseChange) {
	if f.Phase != nil {
		f.Phase(c)
	}
}

func (f ListenerFuncs) OnFrame(fr core.Frame) {
	if f.Frame != nil {
		f.Frame(fr)
	}
}
