package rules

import "fmt"

// Direction is a cardinal facing. North is toward row 0.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = map[Direction]string{
	North: "north",
	East:  "east",
	South: "south",
	West:  "west",
}

// Directions in the order neighbours are scanned everywhere
var Directions = []Direction{North, East, South, West}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}

	return fmt.Sprintf("direction(%d)", uint8(d))
}

func (d Direction) Valid() bool {
	_, ok := directionNames[d]
	return ok
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown direction %d", uint8(d))
	}

	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	for dir, name := range directionNames {
		if name == string(text) {
			*d = dir
			return nil
		}
	}

	return fmt.Errorf("unknown direction %q", string(text))
}

// Delta returns the grid step for this facing
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1

	case East:
		return 1, 0

	case South:
		return 0, 1

	case West:
		return -1, 0

	default:
		return 0, 0
	}
}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// DirectionOf picks the cardinal direction of a vector by its dominant axis.
// Ties go to the horizontal axis; a zero vector yields North.
func DirectionOf(dx, dy int) Direction {
	adx, ady := dx, dy
	if adx < 0 {
		adx = -adx
	}
	if ady < 0 {
		ady = -ady
	}

	if adx == 0 && ady == 0 {
		return North
	}

	if adx >= ady {
		if dx > 0 {
			return East
		}
		return West
	}

	if dy > 0 {
		return South
	}
	return North
}
