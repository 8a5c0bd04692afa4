// Package combatant implements a single fighter: its action state machine,
// its resources and its own physics step.
package combatant

import (
	"math"

	"github.com/ringside/simulator/pkg/core"
)

// Bounds is the part of the arena a fighter needs during its physics step.
type Bounds interface {
	FloorY() float64
	ClampX(x float64) (float64, bool)
}

// Hit is a damage application computed by the attack resolver.
type Hit struct {
	Damage       float64
	KnockbackX   float64
	StaminaDrain float64
	// Stagger moves the fighter into HIT. Blocked hits do not stagger.
	Stagger bool
}

// Combatant is one fighter. Position is only written by Update and the
// round/match resets; every resource write is clamped at the write site.
type Combatant struct {
	name   string
	side   core.Side
	tuning *Tuning

	pos         core.Vec2
	vel         core.Vec2
	facingRight bool
	grounded    bool

	health  float64
	stamina float64

	state        core.State
	stateTimer   float64 // remaining attack duration or stagger
	cooldown     float64
	dashCooldown float64
	combo        int
	comboTimer   float64
	activation   uint64 // bumped on every attack thrown

	// per-tick requests, cleared at the end of Update
	moveDir   float64
	blockHeld bool

	roundsWon int
}

// New creates a fighter at spawn with full resources. tuning is shared and
// must not change while the fighter is in use.
func New(name string, side core.Side, spawn core.Vec2, facingRight bool, tuning *Tuning) *Combatant {
	c := &Combatant{name: name, side: side, tuning: tuning}
	c.ResetForMatch(spawn, facingRight)
	return c
}

func (c *Combatant) Name() string           { return c.name }
func (c *Combatant) Side() core.Side        { return c.side }
func (c *Combatant) Position() core.Vec2    { return c.pos }
func (c *Combatant) Velocity() core.Vec2    { return c.vel }
func (c *Combatant) FacingRight() bool      { return c.facingRight }
func (c *Combatant) Grounded() bool         { return c.grounded }
func (c *Combatant) Health() float64        { return c.health }
func (c *Combatant) Stamina() float64       { return c.stamina }
func (c *Combatant) MaxHealth() float64     { return c.tuning.MaxHealth }
func (c *Combatant) MaxStamina() float64    { return c.tuning.MaxStamina }
func (c *Combatant) State() core.State      { return c.state }
func (c *Combatant) Cooldown() float64      { return c.cooldown }
func (c *Combatant) Combo() int             { return c.combo }
func (c *Combatant) ComboTimer() float64    { return c.comboTimer }
func (c *Combatant) Activation() uint64     { return c.activation }
func (c *Combatant) RoundsWon() int         { return c.roundsWon }
func (c *Combatant) Tuning() *Tuning        { return c.tuning }
func (c *Combatant) IsKnockedOut() bool     { return c.health <= 0 }
func (c *Combatant) HealthPercent() float64 { return c.health / c.tuning.MaxHealth }

func (c *Combatant) StaminaPercent() float64 { return c.stamina / c.tuning.MaxStamina }

// Snapshot copies the fighter's public state.
func (c *Combatant) Snapshot() core.CombatantSnapshot {
	return core.CombatantSnapshot{
		Name:        c.name,
		Side:        c.side,
		Position:    c.pos,
		Velocity:    c.vel,
		FacingRight: c.facingRight,
		Health:      c.health,
		MaxHealth:   c.tuning.MaxHealth,
		Stamina:     c.stamina,
		MaxStamina:  c.tuning.MaxStamina,
		State:       c.state,
		Combo:       c.combo,
		RoundsWon:   c.roundsWon,
		Grounded:    c.grounded,
	}
}

// ApplyIntent turns one tick of input into requests. Rejected requests are
// dropped without a trace.
func (c *Combatant) ApplyIntent(in core.Intent) {
	c.SetMove(in.Horizontal())
	c.SetBlock(in.Block)
	if in.Jump {
		c.RequestJump()
	}
	if in.Dash {
		c.RequestDash()
	}
	if kind, ok := in.Attack(); ok {
		c.RequestAttack(kind)
	}
}

// SetMove sets this tick's walking direction, -1..1.
func (c *Combatant) SetMove(dir float64) {
	c.moveDir = core.Clamp(dir, -1, 1)
}

// SetBlock records whether block is held this tick.
func (c *Combatant) SetBlock(held bool) {
	c.blockHeld = held
	if held && c.canBlock() {
		c.state = core.StateBlocking
	}
}

// FaceToward turns the fighter toward x.
func (c *Combatant) FaceToward(x float64) {
	if x > c.pos.X {
		c.facingRight = true
	} else if x < c.pos.X {
		c.facingRight = false
	}
}

// Nudge adds a horizontal velocity impulse. Ignored while staggered.
func (c *Combatant) Nudge(dvx float64) bool {
	if c.state == core.StateHit {
		return false
	}
	c.vel.X += dvx
	return true
}

// RequestJump starts a jump when grounded, idle or walking, and stamina allows.
func (c *Combatant) RequestJump() bool {
	if !c.grounded || !c.isFree() || c.stamina < c.tuning.JumpCost {
		return false
	}
	c.spendStamina(c.tuning.JumpCost)
	c.vel.Y = -c.tuning.JumpImpulse
	c.grounded = false
	c.state = core.StateJumping
	return true
}

// RequestDash bursts along the walking direction, or the facing direction
// when standing still.
func (c *Combatant) RequestDash() bool {
	if !c.grounded || !c.isFree() || c.dashCooldown > 0 || c.stamina < c.tuning.DashCost {
		return false
	}
	dir := c.moveDir
	if dir == 0 {
		dir = c.facing()
	}
	c.spendStamina(c.tuning.DashCost)
	c.dashCooldown = c.tuning.DashCooldown
	c.vel.X = math.Copysign(c.tuning.DashImpulse, dir)
	return true
}

// RequestAttack throws kind if the cooldown has elapsed and stamina covers
// the cost. Any state but a running attack can be left this way, including
// a stagger. Heavy and grapple throws end any running combo.
func (c *Combatant) RequestAttack(kind core.AttackKind) bool {
	spec := c.tuning.Attack(kind)
	if c.state.IsAttacking() || c.cooldown > 0 || c.stamina < spec.Cost {
		return false
	}
	c.spendStamina(spec.Cost)
	c.cooldown = spec.Cooldown
	c.stateTimer = spec.Duration
	c.state = kind.State()
	c.activation++
	if kind != core.AttackLight {
		c.combo = 0
		c.comboTimer = 0
	}
	return true
}

// Update advances timers, integrates physics over dt and settles the state
// machine. The caller guarantees dt is positive and finite.
func (c *Combatant) Update(dt float64, bounds Bounds) {
	t := c.tuning

	c.cooldown = math.Max(0, c.cooldown-dt)
	c.dashCooldown = math.Max(0, c.dashCooldown-dt)
	if c.comboTimer > 0 {
		c.comboTimer -= dt
		if c.comboTimer <= 0 {
			c.comboTimer = 0
			c.combo = 0
		}
	}
	if !c.state.IsAttacking() {
		c.stamina = core.Clamp(c.stamina+t.StaminaRegen*dt, 0, t.MaxStamina)
	}

	if c.state.IsAttacking() || c.state == core.StateHit {
		c.stateTimer -= dt
		if c.stateTimer <= 0 {
			c.stateTimer = 0
			c.settle()
		}
	}
	if c.state == core.StateBlocking && (!c.blockHeld || !c.grounded) {
		c.state = core.StateIdle
	}
	if c.blockHeld && c.canBlock() {
		c.state = core.StateBlocking
	}

	c.steer(dt)

	// integrate
	c.vel.Y += t.Gravity * dt
	c.pos = c.pos.Add(c.vel.Scale(dt))

	floor := bounds.FloorY()
	if c.pos.Y >= floor {
		c.pos.Y = floor
		if c.vel.Y > 0 {
			c.vel.Y = 0
		}
		c.grounded = true
	} else {
		c.grounded = false
	}

	walking := c.moveDir != 0 && c.isFree() && c.vel.X*c.moveDir <= t.WalkSpeed
	if !walking {
		rate := t.AirFriction
		if c.grounded {
			rate = t.GroundFriction
		}
		c.vel.X *= math.Exp(-rate * dt)
	}

	if x, clamped := bounds.ClampX(c.pos.X); clamped {
		c.pos.X = x
		c.vel.X = 0
	}

	switch c.state {
	case core.StateJumping:
		if c.vel.Y >= 0 {
			c.state = core.StateFalling
		}
	case core.StateFalling:
		if c.grounded {
			c.state = c.locomotion()
		}
	case core.StateIdle, core.StateWalking:
		if c.grounded {
			c.state = c.locomotion()
		}
	}

	c.moveDir = 0
	c.blockHeld = false
}

// TakeHit applies a resolved hit. Called only by the attack resolver.
func (c *Combatant) TakeHit(h Hit) {
	c.health = core.Clamp(c.health-h.Damage, 0, c.tuning.MaxHealth)
	c.stamina = core.Clamp(c.stamina-h.StaminaDrain, 0, c.tuning.MaxStamina)
	c.vel.X += h.KnockbackX
	if h.Stagger {
		c.state = core.StateHit
		c.stateTimer = c.tuning.HitStagger
	}
}

// RegisterLightHit extends the combo after a landed light attack.
func (c *Combatant) RegisterLightHit() {
	c.combo++
	c.comboTimer = c.tuning.ComboWindow
}

// AwardRound credits a round win.
func (c *Combatant) AwardRound() { c.roundsWon++ }

// ResetForRound moves the fighter back to spawn and tops resources up to the
// round floors. It never heals fully unless the fighter already was.
func (c *Combatant) ResetForRound(spawn core.Vec2, facingRight bool) {
	t := c.tuning
	c.health = core.Clamp(math.Max(c.health, t.RoundHealthFloor*t.MaxHealth), 0, t.MaxHealth)
	c.stamina = core.Clamp(math.Max(c.stamina, t.RoundStaminaFloor*t.MaxStamina), 0, t.MaxStamina)
	c.place(spawn, facingRight)
}

// ResetForMatch restores everything, including round wins.
func (c *Combatant) ResetForMatch(spawn core.Vec2, facingRight bool) {
	c.health = c.tuning.MaxHealth
	c.stamina = c.tuning.MaxStamina
	c.roundsWon = 0
	c.place(spawn, facingRight)
}

func (c *Combatant) place(spawn core.Vec2, facingRight bool) {
	c.pos = spawn
	c.vel = core.Vec2{}
	c.facingRight = facingRight
	c.grounded = true
	c.state = core.StateIdle
	c.stateTimer = 0
	c.cooldown = 0
	c.dashCooldown = 0
	c.combo = 0
	c.comboTimer = 0
	c.moveDir = 0
	c.blockHeld = false
}

// steer applies walking intent: direct on the ground, blended in the air.
func (c *Combatant) steer(dt float64) {
	if c.moveDir == 0 || !c.isFree() {
		return
	}
	c.facingRight = c.moveDir > 0
	target := c.moveDir * c.tuning.WalkSpeed
	if c.grounded {
		// a dash or knockback faster than walking in the same direction is kept
		if c.vel.X*c.moveDir < c.tuning.WalkSpeed {
			c.vel.X = target
		}
		return
	}
	blend := math.Min(1, c.tuning.AirControl*dt)
	c.vel.X += (target - c.vel.X) * blend
}

// settle ends an attack or a stagger.
func (c *Combatant) settle() {
	if c.grounded {
		c.state = core.StateIdle
	} else {
		c.state = core.StateFalling
	}
}

func (c *Combatant) locomotion() core.State {
	if c.moveDir != 0 {
		return core.StateWalking
	}
	return core.StateIdle
}

// isFree reports whether the fighter accepts movement input.
func (c *Combatant) isFree() bool {
	switch c.state {
	case core.StateIdle, core.StateWalking, core.StateJumping, core.StateFalling:
		return true
	}
	return false
}

func (c *Combatant) canBlock() bool {
	return c.grounded && (c.state == core.StateIdle || c.state == core.StateWalking || c.state == core.StateBlocking)
}

func (c *Combatant) facing() float64 {
	if c.facingRight {
		return 1
	}
	return -1
}

func (c *Combatant) spendStamina(cost float64) {
	c.stamina = core.Clamp(c.stamina-cost, 0, c.tuning.MaxStamina)
}
