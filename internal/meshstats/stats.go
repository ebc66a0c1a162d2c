// Package meshstats derives geometric statistics and a validity heuristic
// from a loaded scene.
package meshstats

import (
	"errors"
	"fmt"
	"math"

	"glbstats/internal/mathutil"
)

var (
	// ErrNoBounds is returned when a scene has no measurable extent.
	ErrNoBounds = errors.New("unable to compute bounds")
	// ErrVolume is returned when the enclosed volume cannot be computed.
	ErrVolume = errors.New("unable to compute volume")
)

// Source is the scene surface the stats computer reads. CenterMass and
// Centroid are best effort and may return nil or malformed vectors.
type Source interface {
	Bounds() (min, max mathutil.Vec3, err error)
	CenterMass() []float64
	Centroid() []float64
	Volume() (float64, error)
}

// CenterSource records which fallback produced the center of mass.
type CenterSource int

const (
	CenterFromMass CenterSource = iota
	CenterFromCentroid
	CenterFromBounds
)

func (c CenterSource) String() string {
	switch c {
	case CenterFromMass:
		return "mass"
	case CenterFromCentroid:
		return "centroid"
	default:
		return "bounds"
	}
}

// Stats holds the numeric fields of a record, every value rounded to
// mathutil.Precision digits.
type Stats struct {
	Min, Max          mathutil.Vec3
	BoundingBoxVolume float64
	Footprint         float64
	Height            float64
	Volume            float64
	// VolumeRatio is nil when the bounding box has no volume.
	VolumeRatio  *float64
	CenterOfMass mathutil.Vec3
	CenterSource CenterSource
}

// Compute derives Stats from src. Axes: x is width, y is up, z is depth.
// Extents come from the rounded bounds, so derived products are
// reproducible from the published min/max values.
func Compute(src Source) (Stats, error) {
	rawMin, rawMax, err := src.Bounds()
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrNoBounds, err)
	}

	com, from := centerOfMass(src, rawMin, rawMax)

	min := mathutil.RoundVec(rawMin)
	max := mathutil.RoundVec(rawMax)
	ext := max.Sub(min)

	vol, err := src.Volume()
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrVolume, err)
	}
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return Stats{}, fmt.Errorf("%w: volume is %v", ErrVolume, vol)
	}

	s := Stats{
		Min:               min,
		Max:               max,
		BoundingBoxVolume: mathutil.Round(ext[0] * ext[1] * ext[2]),
		Footprint:         mathutil.Round(ext[0] * ext[2]),
		Height:            mathutil.Round(ext[1]),
		Volume:            mathutil.Round(vol),
		CenterOfMass:      mathutil.RoundVec(com),
		CenterSource:      from,
	}
	if s.BoundingBoxVolume > 0 {
		s.VolumeRatio = ptr(mathutil.Round(vol / s.BoundingBoxVolume))
	}
	return s, nil
}

// centerOfMass tries the physical center of mass, then the centroid, then
// the bounding-box midpoint, which is always valid.
func centerOfMass(src Source, min, max mathutil.Vec3) (mathutil.Vec3, CenterSource) {
	if v, ok := validVector(src.CenterMass()); ok {
		return v, CenterFromMass
	}
	if v, ok := validVector(src.Centroid()); ok {
		return v, CenterFromCentroid
	}
	return mathutil.Midpoint(min, max), CenterFromBounds
}

// validVector accepts exactly three finite components.
func validVector(values []float64) (mathutil.Vec3, bool) {
	if len(values) != 3 {
		return mathutil.Vec3{}, false
	}
	v := mathutil.Vec3{values[0], values[1], values[2]}
	return v, v.IsFinite()
}
