package world

import "github.com/Scrimzay/tacticsim/internal/rules"

// Relation classifies where an attacker stands relative to a defender's facing
type Relation uint8

const (
	Front Relation = iota
	Flank
	Rear
)

func (r Relation) String() string {
	switch r {
	case Front:
		return "front"

	case Flank:
		return "flank"

	case Rear:
		return "rear"

	default:
		return "unknown"
	}
}

// RelationOf compares the vector defender->attacker against the defender's
// facing. Exact diagonals count as flank.
func RelationOf(facing rules.Direction, defender, attacker Point) Relation {
	vx, vy := attacker.X-defender.X, attacker.Y-defender.Y
	fx, fy := facing.Delta()

	dot := vx*fx + vy*fy
	cross := vx*fy - vy*fx
	if cross < 0 {
		cross = -cross
	}

	switch {
	case dot > cross:
		return Front

	case -dot > cross:
		return Rear

	default:
		return Flank
	}
}
