package combat

import (
	"testing"

	"github.com/ringside/simulator/internal/combatant"
	"github.com/ringside/simulator/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource replays a scripted sequence, repeating the last value.
type fixedSource struct {
	values []float64
	i      int
}

func (s *fixedSource) Float64() float64 {
	v := s.values[min(s.i, len(s.values)-1)]
	s.i++
	return v
}

const floor = 360.0

func newPair(t *testing.T, distance float64) (*combatant.Combatant, *combatant.Combatant) {
	t.Helper()
	tuning := combatant.DefaultTuning()
	require.NoError(t, tuning.Validate())
	a := combatant.New("red", core.SideHuman, core.Vec2{X: 200, Y: floor}, true, &tuning)
	b := combatant.New("blue", core.SideAI, core.Vec2{X: 200 + distance, Y: floor}, false, &tuning)
	return a, b
}

func newResolver(values ...float64) *Resolver {
	return New(DefaultRules(), &fixedSource{values: values})
}

func TestResolveHit_LightAtRange(t *testing.T) {
	a, b := newPair(t, 70)
	r := newResolver(0.5)

	require.True(t, a.RequestAttack(core.AttackLight))
	assert.Equal(t, 94.0, a.Stamina())
	assert.True(t, r.CanHit(a, b))

	res := r.ResolveHit(a, b)
	assert.True(t, res.Hit)
	assert.Equal(t, 11.0, res.Damage)
	assert.Equal(t, core.AttackLight, res.Kind)
	assert.Equal(t, 0, res.Combo)
	assert.Equal(t, core.Vec2{X: 235, Y: floor}, res.Impact)
	assert.Equal(t, "red", res.Attacker)
	assert.Equal(t, "blue", res.Defender)

	assert.Equal(t, 89.0, b.Health())
	assert.Equal(t, 94.5, b.Stamina())
	assert.Equal(t, core.StateHit, b.State())
	assert.InDelta(t, 132, b.Velocity().X, 1e-9, "pushed away from the attacker")
	assert.Equal(t, 1, a.Combo())
}

func TestResolveHit_OncePerActivation(t *testing.T) {
	a, b := newPair(t, 50)
	r := newResolver(0.5)

	require.True(t, a.RequestAttack(core.AttackLight))
	require.True(t, r.ResolveHit(a, b).Hit)

	for i := 0; i < 5; i++ {
		assert.True(t, r.CanHit(a, b), "still inside the attack window")
		assert.False(t, r.ResolveHit(a, b).Hit)
	}
	assert.Equal(t, 89.0, b.Health())
}

func TestResolveHit_NewActivationLandsAgain(t *testing.T) {
	a, b := newPair(t, 50)
	r := newResolver(0.5)

	require.True(t, a.RequestAttack(core.AttackLight))
	require.True(t, r.ResolveHit(a, b).Hit)

	a.Update(0.4, stillBounds{})
	require.True(t, a.RequestAttack(core.AttackLight))
	res := r.ResolveHit(a, b)
	assert.True(t, res.Hit)
	assert.Equal(t, 1, res.Combo)
}

func TestResolveHit_Misses(t *testing.T) {
	t.Run("out of range", func(t *testing.T) {
		a, b := newPair(t, 70.5)
		r := newResolver(0.5)
		require.True(t, a.RequestAttack(core.AttackLight))

		assert.False(t, r.CanHit(a, b))
		res := r.ResolveHit(a, b)
		assert.False(t, res.Hit)
		assert.Equal(t, 100.0, b.Health())
		assert.Equal(t, core.StateIdle, b.State())
	})

	t.Run("not attacking", func(t *testing.T) {
		a, b := newPair(t, 10)
		r := newResolver(0.5)
		assert.False(t, r.CanHit(a, b))
		assert.False(t, r.ResolveHit(a, b).Hit)
		assert.Equal(t, 100.0, b.Health())
	})
}

func TestResolveHit_ComboScalesDamage(t *testing.T) {
	a, b := newPair(t, 50)
	r := newResolver(0.5)
	a.RegisterLightHit()
	a.RegisterLightHit()
	a.RegisterLightHit()

	require.True(t, a.RequestAttack(core.AttackLight))
	res := r.ResolveHit(a, b)
	assert.InDelta(t, 11*1.36, res.Damage, 1e-9)
	assert.Equal(t, 3, res.Combo)
	assert.Equal(t, 4, a.Combo())
}

func TestResolveHit_HeavyIgnoresPriorCombo(t *testing.T) {
	a, b := newPair(t, 80)
	r := newResolver(0.5)
	a.RegisterLightHit()
	a.RegisterLightHit()
	a.RegisterLightHit()

	require.True(t, a.RequestAttack(core.AttackHeavy))
	res := r.ResolveHit(a, b)
	assert.True(t, res.Hit)
	assert.Equal(t, 23.0, res.Damage, "multiplier is 1.0")
	assert.Equal(t, 0, res.Combo)
	assert.Equal(t, 0, a.Combo())
}

func TestResolveHit_Blocked(t *testing.T) {
	a, b := newPair(t, 50)
	r := newResolver(0.5)
	b.SetBlock(true)
	require.Equal(t, core.StateBlocking, b.State())

	require.True(t, a.RequestAttack(core.AttackLight))
	res := r.ResolveHit(a, b)
	assert.True(t, res.Hit)
	assert.True(t, res.Blocked)
	assert.InDelta(t, 3.3, res.Damage, 1e-9)
	assert.InDelta(t, 96.7, b.Health(), 1e-9)
	assert.Equal(t, core.StateBlocking, b.State(), "a blocked hit does not stagger")
	assert.InDelta(t, 52.8, b.Velocity().X, 1e-9)
	assert.Equal(t, 0, a.Combo(), "blocked hits do not build a combo")
}

func TestResolveHit_BlockKeepsKnockbackWhenConfigured(t *testing.T) {
	a, b := newPair(t, 50)
	rules := DefaultRules()
	rules.BlockReducesKnockback = false
	r := New(rules, &fixedSource{values: []float64{0.5}})
	b.SetBlock(true)

	require.True(t, a.RequestAttack(core.AttackLight))
	r.ResolveHit(a, b)
	assert.InDelta(t, 132, b.Velocity().X, 1e-9)
}

func TestResolveHit_KnockbackDirection(t *testing.T) {
	a, b := newPair(t, -40)
	r := newResolver(0)

	a.FaceToward(b.Position().X)
	require.True(t, a.RequestAttack(core.AttackLight))
	res := r.ResolveHit(a, b)
	require.True(t, res.Hit)
	assert.Equal(t, 8.0, res.Damage)
	assert.Less(t, b.Velocity().X, 0.0)
}

func TestResolveHit_HealthClampedAtZero(t *testing.T) {
	a, b := newPair(t, 40)
	r := newResolver(0.99)
	b.TakeHit(combatant.Hit{Damage: 95})

	require.True(t, a.RequestAttack(core.AttackGrapple))
	require.True(t, r.ResolveHit(a, b).Hit)
	assert.Equal(t, 0.0, b.Health())
	assert.GreaterOrEqual(t, b.Stamina(), 0.0)
}

func TestResolvePair_Trade(t *testing.T) {
	a, b := newPair(t, 60)
	r := newResolver(0.5, 0)

	require.True(t, a.RequestAttack(core.AttackLight))
	require.True(t, b.RequestAttack(core.AttackLight))

	results := r.ResolvePair(a, b)
	assert.True(t, results[0].Hit, "red lands")
	assert.True(t, results[1].Hit, "blue lands even though red's hit staggered it")
	assert.Equal(t, 11.0, results[0].Damage)
	assert.Equal(t, 8.0, results[1].Damage)
	assert.Equal(t, 89.0, b.Health())
	assert.Equal(t, 92.0, a.Health())

	again := r.ResolvePair(a, b)
	assert.False(t, again[0].Hit)
	assert.False(t, again[1].Hit)
}

func TestReset_ForgetsLandedActivations(t *testing.T) {
	a, b := newPair(t, 50)
	r := newResolver(0.5)
	require.True(t, a.RequestAttack(core.AttackLight))
	require.True(t, r.ResolveHit(a, b).Hit)

	r.Reset()
	assert.True(t, r.ResolveHit(a, b).Hit)
}

type stillBounds struct{}

func (stillBounds) FloorY() float64                  { return floor }
func (stillBounds) ClampX(x float64) (float64, bool) { return x, false }
