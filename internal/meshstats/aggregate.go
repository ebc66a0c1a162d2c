package meshstats

import (
	"fmt"
	"math"

	"glbstats/internal/mathutil"
	"glbstats/internal/mesh"
)

// Validity is the outcome of the combined-surface analysis. All fields are
// nil together when the analysis could not run.
type Validity struct {
	Watertight         *bool
	TriangleCount      *int
	VolumeRatio        *float64
	PotentiallyInvalid *bool
}

// Degraded reports whether the analysis failed and left every field nil.
func (v Validity) Degraded() bool {
	return v.Watertight == nil && v.TriangleCount == nil && v.PotentiallyInvalid == nil
}

// Combine concatenates all triangle meshes into one surface. ok is false
// when there is no triangle geometry at all.
func Combine(meshes []mesh.Mesh) (combined mesh.Mesh, ok bool) {
	if len(meshes) == 0 {
		return mesh.Mesh{}, false
	}
	return mesh.Concatenate(meshes...), true
}

// AnalyzeValidity merges the triangle meshes and classifies the result
// against the bounding-box volume computed for the same scene. Any failure
// is returned alongside a fully nil Validity; callers keep the rest of the
// record.
func AnalyzeValidity(meshes []mesh.Mesh, bboxVolume float64) (v Validity, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = Validity{}, fmt.Errorf("validity analysis: %v", r)
		}
	}()

	combined, ok := Combine(meshes)
	if !ok {
		return Validity{
			Watertight:         ptr(true),
			TriangleCount:      ptr(0),
			VolumeRatio:        nil,
			PotentiallyInvalid: ptr(false),
		}, nil
	}

	watertight := IsWatertight(combined)
	count := combined.TriangleCount()

	var ratio *float64
	if bboxVolume > 0 {
		vol := combined.Volume()
		if !math.IsNaN(vol) && !math.IsInf(vol, 0) {
			ratio = ptr(mathutil.Round(vol / bboxVolume))
		}
	}

	return Validity{
		Watertight:         ptr(watertight),
		TriangleCount:      ptr(count),
		VolumeRatio:        ratio,
		PotentiallyInvalid: ptr(IsPotentiallyInvalid(watertight, count, ratio)),
	}, nil
}

func ptr[T any](v T) *T { return &v }
