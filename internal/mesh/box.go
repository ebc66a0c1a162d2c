package mesh

import "glbstats/internal/mathutil"

// Box face pairs, in the order they appear in Box().Faces.
const (
	BoxBottom = iota * 2 // -Y
	BoxTop               // +Y
	BoxLeft              // -X
	BoxRight             // +X
	BoxBack              // -Z
	BoxFront             // +Z
)

// Box returns a closed, outward-wound axis-aligned box with 8 shared
// vertices and 12 triangles. Vertex i has x from bit 0, y from bit 1 and
// z from bit 2 (0 = min, 1 = max).
func Box(min, max mathutil.Vec3) Mesh {
	verts := make([]mathutil.Vec3, 8)
	for i := range verts {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				verts[i][axis] = max[axis]
			} else {
				verts[i][axis] = min[axis]
			}
		}
	}
	return Mesh{
		Vertices: verts,
		Faces: [][3]int{
			{0, 1, 4}, {1, 5, 4}, // -Y
			{2, 6, 3}, {3, 6, 7}, // +Y
			{0, 4, 2}, {2, 4, 6}, // -X
			{1, 3, 5}, {3, 7, 5}, // +X
			{0, 2, 1}, {1, 2, 3}, // -Z
			{4, 5, 6}, {5, 7, 6}, // +Z
		},
	}
}

// WithoutFaces returns a copy of m with the face pair starting at each
// given index removed. Used to open holes in closed test solids.
func (m Mesh) WithoutFaces(pairs ...int) Mesh {
	drop := make(map[int]bool, len(pairs)*2)
	for _, p := range pairs {
		drop[p] = true
		drop[p+1] = true
	}
	out := Mesh{Vertices: append([]mathutil.Vec3(nil), m.Vertices...)}
	for i, f := range m.Faces {
		if !drop[i] {
			out.Faces = append(out.Faces, f)
		}
	}
	return out
}
