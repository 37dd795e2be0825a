package world

// HasLineOfSight walks a Bresenham line from a to b. Only the cells strictly
// between the endpoints can block.
func HasLineOfSight(terrain *TerrainMap, a, b Point) bool {
	dx := b.X - a.X
	if dx < 0 {
		dx = -dx
	}
	dy := b.Y - a.Y
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	err := dx - dy
	x, y := a.X, a.Y
	for {
		if x == b.X && y == b.Y {
			return true
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}

		p := Point{X: x, Y: y}
		if p == b {
			return true
		}
		if terrain.At(p).BlocksLineOfSight {
			return false
		}
	}
}
