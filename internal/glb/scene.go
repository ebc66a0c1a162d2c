package glb

import (
	"errors"
	"fmt"
	"math"

	"glbstats/internal/mathutil"
	"glbstats/internal/mesh"
)

// TriangleMeshes returns every instanced triangle geometry in world space.
func (s *Scene) TriangleMeshes() []mesh.Mesh {
	var out []mesh.Mesh
	for _, inst := range s.Instances {
		g := s.Geometries[inst.Geometry]
		if g.Kind != KindTriangles {
			continue
		}
		out = append(out, g.Mesh.Transform(inst.Transform))
	}
	return out
}

// Bounds returns the world-space axis-aligned bounds of all instanced
// vertices, lines and points included.
func (s *Scene) Bounds() (mathutil.Vec3, mathutil.Vec3, error) {
	var min, max mathutil.Vec3
	found := false
	for _, inst := range s.Instances {
		for _, v := range s.Geometries[inst.Geometry].Mesh.Vertices {
			p := inst.Transform.MulPoint(v)
			if !found {
				min, max, found = p, p, true
				continue
			}
			min = min.Min(p)
			max = max.Max(p)
		}
	}
	if !found {
		return min, max, errors.New("scene has no vertices")
	}
	if !min.IsFinite() || !max.IsFinite() {
		return min, max, errors.New("scene bounds are not finite")
	}
	return min, max, nil
}

// Volume returns the summed signed volume of all triangle instances.
func (s *Scene) Volume() (float64, error) {
	var vol float64
	for _, m := range s.TriangleMeshes() {
		vol += m.Volume()
	}
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return 0, fmt.Errorf("volume is %v", vol)
	}
	return vol, nil
}

// CenterMass returns the volume-weighted center of all triangle instances,
// or nil when the scene encloses no volume.
func (s *Scene) CenterMass() []float64 {
	c, ok := mesh.Concatenate(s.TriangleMeshes()...).CenterMass()
	if !ok {
		return nil
	}
	return c[:]
}

// Centroid returns the area-weighted surface centroid, or nil when the
// scene has no triangle area.
func (s *Scene) Centroid() []float64 {
	c, ok := mesh.Concatenate(s.TriangleMeshes()...).Centroid()
	if !ok {
		return nil
	}
	return c[:]
}
