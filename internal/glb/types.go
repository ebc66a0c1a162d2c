package glb

import (
	"glbstats/internal/mathutil"
	"glbstats/internal/mesh"
)

// Kind classifies a geometry by its primitive topology.
type Kind int

const (
	KindTriangles Kind = iota
	KindLines
	KindPoints
)

func (k Kind) String() string {
	switch k {
	case KindTriangles:
		return "triangles"
	case KindLines:
		return "lines"
	case KindPoints:
		return "points"
	}
	return "unknown"
}

// Geometry is one mesh primitive in local (untransformed) space.
// Faces are only set for KindTriangles.
type Geometry struct {
	Name string
	Kind Kind
	Mesh mesh.Mesh
}

// Instance places a geometry in the scene with a world transform.
type Instance struct {
	Geometry  int // index into Scene.Geometries
	Node      string
	Transform mathutil.Mat4
}

// Scene is a loaded file: its geometries and where they are placed.
type Scene struct {
	Path       string
	Geometries []Geometry
	Instances  []Instance
}
