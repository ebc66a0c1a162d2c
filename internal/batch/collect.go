package batch

import (
	"go.uber.org/zap"

	"glbstats/internal/asset"
	"glbstats/internal/catalog"
	"glbstats/internal/glb"
	"glbstats/internal/logger"
	"glbstats/internal/meshstats"
)

// Collect loads one mesh file and builds its record. Catalog fields are
// attached when cat has an entry for the file stem. A failed validity
// analysis is logged and leaves those fields null.
func Collect(path string, cat catalog.Map) (asset.Record, error) {
	scene, err := glb.Load(path)
	if err != nil {
		return asset.Record{}, err
	}
	return CollectScene(Stem(path), scene, cat)
}

// CollectScene builds the record for an already loaded scene.
func CollectScene(name string, scene *glb.Scene, cat catalog.Map) (asset.Record, error) {
	stats, err := meshstats.Compute(scene)
	if err != nil {
		return asset.Record{}, err
	}
	logger.Debug("center of mass",
		zap.String("asset", name), zap.Stringer("source", stats.CenterSource))

	validity, err := meshstats.AnalyzeValidity(scene.TriangleMeshes(), stats.BoundingBoxVolume)
	if err != nil {
		logger.Warn("validity analysis failed", zap.String("asset", name), zap.Error(err))
	}

	rec := asset.New(name, stats, validity)
	cat.Merge(&rec)
	return rec, nil
}
