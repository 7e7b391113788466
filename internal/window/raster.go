package window

import "github.com/go-gl/mathgl/mgl32"

type cell struct{ x, y int }

// project maps p through mvp to a cell of a width x height grid. Points
// behind the camera or outside the clip volume are rejected.
func project(mvp mgl32.Mat4, p mgl32.Vec3, width, height int) (cell, bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return cell{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
		return cell{}, false
	}
	x := int((ndc.X() + 1) / 2 * float32(width-1))
	y := int((1 - ndc.Y()) / 2 * float32(height-1))
	return cell{x, y}, true
}

// line returns the cells of a Bresenham segment from a to b inclusive.
func line(a, b cell) []cell {
	dx, dy := abs(b.x-a.x), -abs(b.y-a.y)
	sx, sy := 1, 1
	if a.x > b.x {
		sx = -1
	}
	if a.y > b.y {
		sy = -1
	}
	out := make([]cell, 0, max(dx, -dy)+1)
	err := dx + dy
	for {
		out = append(out, a)
		if a == b {
			return out
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			a.x += sx
		}
		if e2 <= dx {
			err += dx
			a.y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
