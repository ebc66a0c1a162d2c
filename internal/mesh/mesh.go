// Package mesh holds indexed triangle surfaces and the solid-geometry
// quantities derived from them.
package mesh

import "glbstats/internal/mathutil"

// Mesh is an indexed triangle surface. Faces index into Vertices and are
// wound counter-clockwise when viewed from outside.
type Mesh struct {
	Vertices []mathutil.Vec3
	Faces    [][3]int
}

// TriangleCount returns the number of faces.
func (m Mesh) TriangleCount() int {
	return len(m.Faces)
}

// Transform returns a copy of m with every vertex moved by t. Mirroring
// transforms reverse each face so outward orientation is preserved.
func (m Mesh) Transform(t mathutil.Mat4) Mesh {
	out := Mesh{
		Vertices: make([]mathutil.Vec3, len(m.Vertices)),
		Faces:    make([][3]int, len(m.Faces)),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = t.MulPoint(v)
	}
	flip := t.FlipsWinding()
	for i, f := range m.Faces {
		if flip {
			out.Faces[i] = [3]int{f[0], f[2], f[1]}
		} else {
			out.Faces[i] = f
		}
	}
	return out
}

// Concatenate appends vertex and face buffers of all meshes into one,
// offsetting face indices. Vertices are not merged across meshes.
func Concatenate(meshes ...Mesh) Mesh {
	nv, nf := 0, 0
	for _, m := range meshes {
		nv += len(m.Vertices)
		nf += len(m.Faces)
	}
	out := Mesh{
		Vertices: make([]mathutil.Vec3, 0, nv),
		Faces:    make([][3]int, 0, nf),
	}
	for _, m := range meshes {
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, f := range m.Faces {
			out.Faces = append(out.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
		}
	}
	return out
}

// Weld merges vertices with identical positions and remaps faces. Vertex
// order follows first occurrence.
func Weld(m Mesh) Mesh {
	index := make(map[mathutil.Vec3]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	verts := make([]mathutil.Vec3, 0, len(m.Vertices))
	for i, v := range m.Vertices {
		if j, ok := index[v]; ok {
			remap[i] = j
			continue
		}
		index[v] = len(verts)
		remap[i] = len(verts)
		verts = append(verts, v)
	}
	faces := make([][3]int, len(m.Faces))
	for i, f := range m.Faces {
		faces[i] = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
	}
	return Mesh{Vertices: verts, Faces: faces}
}
