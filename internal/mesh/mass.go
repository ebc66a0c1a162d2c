package mesh

import (
	"math"

	"glbstats/internal/mathutil"
)

// Volume returns the signed enclosed volume by the divergence theorem:
// the sum of signed tetrahedra spanned by the origin and each face.
// Closed outward-wound surfaces yield a positive value.
func (m Mesh) Volume() float64 {
	var vol float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}

// CenterMass returns the volume-weighted centroid of the signed tetrahedra
// and whether it is meaningful. A surface enclosing (near) zero volume has
// no defined center of mass.
func (m Mesh) CenterMass() (mathutil.Vec3, bool) {
	var vol float64
	var acc mathutil.Vec3
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		v := a.Dot(b.Cross(c)) / 6
		vol += v
		// Tetra centroid with the origin as fourth vertex is (a+b+c)/4.
		acc = acc.Add(a.Add(b).Add(c).Scale(v / 4))
	}
	if math.Abs(vol) < 1e-12 {
		return mathutil.Vec3{}, false
	}
	com := acc.Scale(1 / vol)
	return com, com.IsFinite()
}

// Area returns the total surface area.
func (m Mesh) Area() float64 {
	var area float64
	for _, f := range m.Faces {
		area += triangleArea(m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
	}
	return area
}

// Centroid returns the area-weighted mean of face centroids and whether
// the surface has any area.
func (m Mesh) Centroid() (mathutil.Vec3, bool) {
	var area float64
	var acc mathutil.Vec3
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		w := triangleArea(a, b, c)
		area += w
		acc = acc.Add(a.Add(b).Add(c).Scale(w / 3))
	}
	if area == 0 {
		return mathutil.Vec3{}, false
	}
	c := acc.Scale(1 / area)
	return c, c.IsFinite()
}

// Bounds returns the axis-aligned bounds of all vertices, or false when
// the mesh has none.
func (m Mesh) Bounds() (min, max mathutil.Vec3, ok bool) {
	return BoundsOf(m.Vertices)
}

// BoundsOf returns the axis-aligned bounds of points.
func BoundsOf(points []mathutil.Vec3) (min, max mathutil.Vec3, ok bool) {
	if len(points) == 0 {
		return min, max, false
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max, true
}

func triangleArea(a, b, c mathutil.Vec3) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Len() / 2
}
