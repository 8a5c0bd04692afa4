package core

// CombatantSnapshot is a read-only copy of a fighter's public state.
type CombatantSnapshot struct {
	Name        string  `json:"name"`
	Side        Side    `json:"side"`
	Position    Vec2    `json:"position"`
	Velocity    Vec2    `json:"velocity"`
	FacingRight bool    `json:"facingRight"`
	Health      float64 `json:"health"`
	MaxHealth   float64 `json:"maxHealth"`
	Stamina     float64 `json:"stamina"`
	MaxStamina  float64 `json:"maxStamina"`
	State       State   `json:"state"`
	Combo       int     `json:"combo"`
	RoundsWon   int     `json:"roundsWon"`
	Grounded    bool    `json:"grounded"`
}

// HealthPercent returns health as a fraction of max in [0, 1].
func (s CombatantSnapshot) HealthPercent() float64 {
	if s.MaxHealth <= 0 {
		return 0
	}
	return s.Health / s.MaxHealth
}

// StaminaPercent returns stamina as a fraction of max in [0, 1].
func (s CombatantSnapshot) StaminaPercent() float64 {
	if s.MaxStamina <= 0 {
		return 0
	}
	return s.Stamina / s.MaxStamina
}

// MatchSnapshot is a read-only copy of the match controller.
type MatchSnapshot struct {
	Phase     Phase   `json:"phase"`
	Round     int     `json:"round"`
	MaxRounds int     `json:"maxRounds"`
	PhaseTime float64 `json:"phaseTime"`
	Winner    string  `json:"winner,omitempty"` // set once MATCH_END is reached
	Draw      bool    `json:"draw,omitempty"`
}
