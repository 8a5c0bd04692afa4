package combatant

import (
	"testing"

	"github.com/ringside/simulator/internal/arena"
	"github.com/ringside/simulator/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const step = 1.0 / 60

func newTestFighter(t *testing.T) (*Combatant, *arena.Arena) {
	t.Helper()
	a, err := arena.New(arena.Config{Width: 800, Height: 400, FloorY: 360, HalfWidth: 20})
	require.NoError(t, err)
	tuning := DefaultTuning()
	left, _ := a.Spawn()
	return New("red", core.SideHuman, left, true, &tuning), a
}

func run(c *Combatant, a *arena.Arena, seconds float64) {
	for elapsed := 0.0; elapsed < seconds; elapsed += step {
		c.Update(step, a)
	}
}

func TestNew_FullResources(t *testing.T) {
	c, a := newTestFighter(t)
	assert.Equal(t, 100.0, c.Health())
	assert.Equal(t, 100.0, c.Stamina())
	assert.Equal(t, core.StateIdle, c.State())
	assert.True(t, c.Grounded())
	assert.Equal(t, a.FloorY(), c.Position().Y)
	assert.Equal(t, 1.0, c.HealthPercent())
}

func TestRequestAttack_SpendsStaminaAndStartsCooldown(t *testing.T) {
	c, a := newTestFighter(t)

	require.True(t, c.RequestAttack(core.AttackLight))
	assert.Equal(t, core.StateAttackLight, c.State())
	assert.Equal(t, 94.0, c.Stamina())
	assert.Equal(t, uint64(1), c.Activation())

	assert.False(t, c.RequestAttack(core.AttackHeavy), "already attacking")

	c.Update(0.1, a)
	c.Update(0.15, a)
	assert.Equal(t, core.StateIdle, c.State())
	assert.Equal(t, 94.0, c.Stamina(), "no regen while the attack is active")
	assert.False(t, c.RequestAttack(core.AttackLight), "cooldown outlasts the attack")

	c.Update(0.2, a)
	assert.True(t, c.RequestAttack(core.AttackLight))
	assert.Equal(t, uint64(2), c.Activation())
}

func TestRequestAttack_RejectedWithoutStamina(t *testing.T) {
	c, _ := newTestFighter(t)
	c.TakeHit(Hit{StaminaDrain: 200})

	assert.Equal(t, 0.0, c.Stamina())
	assert.False(t, c.RequestAttack(core.AttackLight))
	assert.Equal(t, uint64(0), c.Activation())
}

func TestTakeHit_ClampsAndStaggers(t *testing.T) {
	c, a := newTestFighter(t)

	c.TakeHit(Hit{Damage: 250, KnockbackX: -100, Stagger: true})
	assert.Equal(t, 0.0, c.Health())
	assert.True(t, c.IsKnockedOut())
	assert.Equal(t, core.StateHit, c.State())
	assert.False(t, c.Nudge(50))

	run(c, a, 0.35)
	assert.Equal(t, core.StateIdle, c.State())
}

func TestRequestAttack_InterruptsStagger(t *testing.T) {
	c, a := newTestFighter(t)
	c.TakeHit(Hit{Damage: 10, Stagger: true})
	require.Equal(t, core.StateHit, c.State())
	require.Zero(t, c.Cooldown())

	require.True(t, c.RequestAttack(core.AttackLight))
	assert.Equal(t, core.StateAttackLight, c.State())

	// light lasts 0.22s, the stagger 0.3s
	run(c, a, 0.25)
	assert.Equal(t, core.StateIdle, c.State())
}

func TestTakeHit_BlockedDoesNotStagger(t *testing.T) {
	c, _ := newTestFighter(t)
	c.SetBlock(true)
	require.Equal(t, core.StateBlocking, c.State())

	c.TakeHit(Hit{Damage: 3})
	assert.Equal(t, 97.0, c.Health())
	assert.Equal(t, core.StateBlocking, c.State())
}

func TestBlock_ReleasedWhenNotHeld(t *testing.T) {
	c, a := newTestFighter(t)
	c.SetBlock(true)
	c.Update(step, a)
	assert.Equal(t, core.StateBlocking, c.State(), "held through the tick")

	c.Update(step, a)
	assert.Equal(t, core.StateIdle, c.State())
}

func TestJump_RisesFallsAndLands(t *testing.T) {
	c, a := newTestFighter(t)
	require.True(t, c.RequestJump())
	assert.Equal(t, core.StateJumping, c.State())
	assert.Equal(t, 90.0, c.Stamina())
	assert.False(t, c.RequestJump(), "no double jump")

	var sawFalling bool
	for i := 0; i < 120; i++ {
		c.Update(step, a)
		assert.LessOrEqual(t, c.Position().Y, a.FloorY())
		if c.State() == core.StateFalling {
			sawFalling = true
		}
	}
	assert.True(t, sawFalling)
	assert.True(t, c.Grounded())
	assert.Equal(t, core.StateIdle, c.State())
	assert.Equal(t, a.FloorY(), c.Position().Y)
}

func TestWalk_StaysInsideRing(t *testing.T) {
	c, a := newTestFighter(t)
	lo, hi := a.PlayableX()

	for i := 0; i < 300; i++ {
		c.SetMove(-1)
		c.Update(step, a)
		assert.GreaterOrEqual(t, c.Position().X, lo)
	}
	assert.Equal(t, lo, c.Position().X)
	assert.False(t, c.FacingRight())

	for i := 0; i < 600; i++ {
		c.SetMove(1)
		c.Update(step, a)
		assert.LessOrEqual(t, c.Position().X, hi)
	}
	assert.Equal(t, hi, c.Position().X)
	assert.Equal(t, core.StateWalking, c.State())
}

func TestFriction_StopsFighter(t *testing.T) {
	c, a := newTestFighter(t)
	c.Nudge(200)
	run(c, a, 2)
	assert.InDelta(t, 0, c.Velocity().X, 0.01)
}

func TestDash(t *testing.T) {
	c, a := newTestFighter(t)
	require.True(t, c.RequestDash())
	assert.Equal(t, 560.0, c.Velocity().X, "dash follows facing when standing still")
	assert.Equal(t, 85.0, c.Stamina())
	assert.False(t, c.RequestDash(), "dash cooldown")

	run(c, a, 0.6)
	c.SetMove(-1)
	assert.True(t, c.RequestDash())
	assert.Equal(t, -560.0, c.Velocity().X)
}

func TestStaminaRegen_Capped(t *testing.T) {
	c, a := newTestFighter(t)
	c.TakeHit(Hit{StaminaDrain: 50})
	c.Update(1, a)
	assert.InDelta(t, 68, c.Stamina(), 1e-9)

	run(c, a, 5)
	assert.Equal(t, 100.0, c.Stamina())
}

func TestCombo_ExpiresAfterWindow(t *testing.T) {
	c, a := newTestFighter(t)
	c.RegisterLightHit()
	c.RegisterLightHit()
	assert.Equal(t, 2, c.Combo())

	c.Update(1.0, a)
	assert.Equal(t, 2, c.Combo())
	assert.Greater(t, c.ComboTimer(), 0.0)
	c.Update(0.3, a)
	assert.Equal(t, 0, c.Combo())
	assert.Zero(t, c.ComboTimer())
}

func TestCombo_ResetByHeavyThrow(t *testing.T) {
	c, _ := newTestFighter(t)
	c.RegisterLightHit()
	require.True(t, c.RequestAttack(core.AttackHeavy))
	assert.Equal(t, 0, c.Combo())
}

func TestResetForRound_RestoresFloors(t *testing.T) {
	c, a := newTestFighter(t)
	c.AwardRound()
	c.TakeHit(Hit{Damage: 90, StaminaDrain: 80, Stagger: true})
	c.Nudge(300)

	left, _ := a.Spawn()
	c.ResetForRound(left, true)
	assert.Equal(t, 35.0, c.Health())
	assert.Equal(t, 60.0, c.Stamina())
	assert.Equal(t, core.StateIdle, c.State())
	assert.Equal(t, left, c.Position())
	assert.Equal(t, core.Vec2{}, c.Velocity())
	assert.Equal(t, 1, c.RoundsWon())

	c.ResetForMatch(left, true)
	assert.Equal(t, 100.0, c.Health())
	assert.Equal(t, 0, c.RoundsWon())

	c.TakeHit(Hit{Damage: 20})
	c.ResetForRound(left, true)
	assert.Equal(t, 80.0, c.Health(), "health above the floor is kept")
}

func TestApplyIntent(t *testing.T) {
	c, _ := newTestFighter(t)
	c.ApplyIntent(core.Intent{Light: true, Heavy: true})
	assert.Equal(t, core.StateAttackLight, c.State())
}

func TestSnapshot(t *testing.T) {
	c, _ := newTestFighter(t)
	s := c.Snapshot()
	assert.Equal(t, "red", s.Name)
	assert.Equal(t, core.SideHuman, s.Side)
	assert.Equal(t, c.Position(), s.Position)
	assert.Equal(t, 100.0, s.MaxHealth)
}

func TestRequestAttack_GrappleWithoutStaminaKeepsState(t *testing.T) {
	c, _ := newTestFighter(t)
	c.TakeHit(Hit{StaminaDrain: 95})
	require.Equal(t, 5.0, c.Stamina())

	assert.False(t, c.RequestAttack(core.AttackGrapple))
	assert.Equal(t, core.StateIdle, c.State())
	assert.Equal(t, 5.0, c.Stamina())
	assert.Equal(t, 0.0, c.Cooldown())
}
