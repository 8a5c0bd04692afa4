package core

// AttackResult is produced once per resolution attempt. Only results with
// Hit set are published to listeners.
type AttackResult struct {
	Hit      bool       `json:"hit"`
	Damage   float64    `json:"damage"`
	Impact   Vec2       `json:"impact"`
	Kind     AttackKind `json:"kind"`
	Combo    int        `json:"combo"`
	Blocked  bool       `json:"blocked,omitempty"`
	Attacker string     `json:"attacker"`
	Defender string     `json:"defender"`
	// AttackerSlot and DefenderSlot index the engine's fighters, human first.
	AttackerSlot uint8  `json:"attackerSlot"`
	DefenderSlot uint8  `json:"defenderSlot"`
	Frame        uint64 `json:"frame"`
	Round        int    `json:"round"`
}

// PhaseChange describes one match controller transition.
type PhaseChange struct {
	From       Phase  `json:"from"`
	To         Phase  `json:"to"`
	Round      int    `json:"round"`
	Frame      uint64 `json:"frame"`
	Winner     string `json:"winner,omitempty"` // round or match winner, empty for a draw
	WinnerSlot *uint8 `json:"winnerSlot,omitempty"`
	Draw       bool   `json:"draw,omitempty"`
	RoundWins  [2]int `json:"roundWins"`
}

// Frame is the read-only state published after every tick.
type Frame struct {
	Number    uint64               `json:"frame"`
	Elapsed   float64              `json:"elapsed"` // scaled simulation seconds since match start
	Match     MatchSnapshot        `json:"match"`
	Fighters  [2]CombatantSnapshot `json:"fighters"`
	TimeScale float64              `json:"timeScale"`
}
