package ai

import "github.com/ringside/simulator/pkg/core"

// Autopilot turns policy decisions into per-tick intents so the policy can
// drive the human slot in headless runs. A movement decision is held until
// the next evaluation.
type Autopilot struct {
	policy *Policy
	hold   float64
}

// NewAutopilot wraps policy.
func NewAutopilot(policy *Policy) *Autopilot {
	return &Autopilot{policy: policy}
}

// Intent returns this tick's input for the fighter in self.
func (a *Autopilot) Intent(self, opp core.CombatantSnapshot, dt float64) core.Intent {
	rec := &intentActor{Target: snapshotTarget{self}}
	d := a.policy.Decide(rec, snapshotTarget{opp}, dt)
	if d.Evaluated {
		a.hold = d.Move
	}

	in := rec.intent
	switch {
	case a.hold < 0:
		in.MoveLeft = true
	case a.hold > 0:
		in.MoveRight = true
	}
	return in
}

// Reset drops the held movement and the policy timer.
func (a *Autopilot) Reset() {
	a.hold = 0
	a.policy.Reset()
}

// intentActor records requests instead of performing them.
type intentActor struct {
	Target
	intent core.Intent
}

func (r *intentActor) FaceToward(float64) {}

func (r *intentActor) Nudge(float64) bool { return true }

func (r *intentActor) RequestAttack(kind core.AttackKind) bool {
	switch kind {
	case core.AttackLight:
		r.intent.Light = true
	case core.AttackHeavy:
		r.intent.Heavy = true
	case core.AttackGrapple:
		r.intent.Grapple = true
	}
	return true
}

type snapshotTarget struct{ s core.CombatantSnapshot }

func (t snapshotTarget) Position() core.Vec2    { return t.s.Position }
func (t snapshotTarget) HealthPercent() float64 { return t.s.HealthPercent() }
