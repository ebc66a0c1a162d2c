package meshstats

// Thresholds of the broken-mesh heuristic.
const (
	// MaxSimpleTriangles separates structurally simple meshes from detailed
	// ones, which often carry deliberate openings such as doors or windows.
	MaxSimpleTriangles = 1000
	// MinFillRatio is the volume ratio below which an open mesh looks like
	// it is missing faces.
	MinFillRatio = 0.3
)

// IsPotentiallyInvalid flags an open, simple mesh that encloses far less
// than its bounding box. All three conditions must hold; a nil volume
// ratio never flags.
func IsPotentiallyInvalid(watertight bool, triangleCount int, volumeRatio *float64) bool {
	return !watertight &&
		triangleCount < MaxSimpleTriangles &&
		volumeRatio != nil &&
		*volumeRatio < MinFillRatio
}
