package core

// Intent is one tick of human input, collected by an input-mapping layer
// outside the simulation.
type Intent struct {
	MoveLeft    bool `json:"moveLeft,omitempty"`
	MoveRight   bool `json:"moveRight,omitempty"`
	Jump        bool `json:"jump,omitempty"`
	Light       bool `json:"light,omitempty"`
	Heavy       bool `json:"heavy,omitempty"`
	Grapple     bool `json:"grapple,omitempty"`
	Block       bool `json:"block,omitempty"`
	Dash        bool `json:"dash,omitempty"`
	PauseToggle bool `json:"pauseToggle,omitempty"`
	Restart     bool `json:"restart,omitempty"`
}

// Horizontal returns -1, 0 or 1 for the requested walking direction.
// Holding both directions cancels out.
func (i Intent) Horizontal() float64 {
	var dir float64
	if i.MoveLeft {
		dir--
	}
	if i.MoveRight {
		dir++
	}
	return dir
}

// Attack returns the requested attack. When several are held the cheapest wins.
func (i Intent) Attack() (AttackKind, bool) {
	switch {
	case i.Light:
		return AttackLight, true
	case i.Heavy:
		return AttackHeavy, true
	case i.Grapple:
		return AttackGrapple, true
	}
	return 0, false
}
