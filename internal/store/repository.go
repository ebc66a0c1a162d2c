// Package store exports asset records to SQLite.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"glbstats/internal/asset"
)

// Repository reads and writes asset records.
type Repository struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return db, nil
}

// OpenRepository opens path and runs migrations.
func OpenRepository(ctx context.Context, path string) (*Repository, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}
	return NewRepository(db), nil
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Close releases the underlying connection.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertRecords inserts records, replacing any existing row with the same
// name.
func (r *Repository) UpsertRecords(ctx context.Context, records []asset.Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]AssetRecordModel, 0, len(records))
	for _, rec := range records {
		m, err := toModel(rec)
		if err != nil {
			return err
		}
		rows = append(rows, m)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"min_x", "min_y", "min_z", "max_x", "max_y", "max_z",
			"bounding_box_volume", "footprint", "height", "volume", "volume_ratio",
			"center_x", "center_y", "center_z",
			"is_watertight", "triangle_count", "is_potentially_invalid",
			"has_catalog", "path", "physics_cost", "category", "level_restrictions",
			"description", "updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("store: upsert: %w", err)
	}
	return nil
}

// List returns all records ordered by name.
func (r *Repository) List(ctx context.Context) ([]asset.Record, error) {
	rows := make([]AssetRecordModel, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	out := make([]asset.Record, 0, len(rows))
	for _, m := range rows {
		rec, err := fromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListPotentiallyInvalid returns the names of flagged records.
func (r *Repository) ListPotentiallyInvalid(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&AssetRecordModel{}).
		Where("is_potentially_invalid = ?", true).
		Order("name ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("store: list invalid: %w", err)
	}
	return names, nil
}

func toModel(rec asset.Record) (AssetRecordModel, error) {
	m := AssetRecordModel{
		Name:                 rec.Name,
		MinX:                 float64(rec.BoundingBox.X.Min),
		MinY:                 float64(rec.BoundingBox.Y.Min),
		MinZ:                 float64(rec.BoundingBox.Z.Min),
		MaxX:                 float64(rec.BoundingBox.X.Max),
		MaxY:                 float64(rec.BoundingBox.Y.Max),
		MaxZ:                 float64(rec.BoundingBox.Z.Max),
		BoundingBoxVolume:    float64(rec.BoundingBoxVolume),
		Footprint:            float64(rec.Footprint),
		Height:               float64(rec.Height),
		Volume:               float64(rec.Volume),
		CenterX:              float64(rec.CenterOfMass.X),
		CenterY:              float64(rec.CenterOfMass.Y),
		CenterZ:              float64(rec.CenterOfMass.Z),
		IsWatertight:         rec.IsWatertight,
		TriangleCount:        rec.TriangleCount,
		IsPotentiallyInvalid: rec.IsPotentiallyInvalid,
		Description:          rec.Description,
	}
	if rec.VolumeRatio != nil {
		v := float64(*rec.VolumeRatio)
		m.VolumeRatio = &v
	}
	if c := rec.Catalog; c != nil {
		m.HasCatalog = true
		m.Path = &c.Path
		if c.Category != nil {
			s := string(c.Category)
			m.Category = &s
		}
		if c.PhysicsCost != nil {
			s := string(c.PhysicsCost)
			m.PhysicsCost = &s
		}
		levels, err := json.Marshal(c.LevelRestrictions)
		if err != nil {
			return AssetRecordModel{}, fmt.Errorf("store: %s: %w", rec.Name, err)
		}
		s := string(levels)
		m.LevelRestrictions = &s
	}
	return m, nil
}

func fromModel(m AssetRecordModel) (asset.Record, error) {
	rec := asset.Record{
		Name: m.Name,
		BoundingBox: asset.BoundingBox{
			X: asset.Range{Min: asset.Float(m.MinX), Max: asset.Float(m.MaxX)},
			Y: asset.Range{Min: asset.Float(m.MinY), Max: asset.Float(m.MaxY)},
			Z: asset.Range{Min: asset.Float(m.MinZ), Max: asset.Float(m.MaxZ)},
		},
		BoundingBoxVolume:    asset.Float(m.BoundingBoxVolume),
		Footprint:            asset.Float(m.Footprint),
		Height:               asset.Float(m.Height),
		Volume:               asset.Float(m.Volume),
		VolumeRatio:          asset.FloatPtr(m.VolumeRatio),
		CenterOfMass:         asset.Point{X: asset.Float(m.CenterX), Y: asset.Float(m.CenterY), Z: asset.Float(m.CenterZ)},
		IsWatertight:         m.IsWatertight,
		TriangleCount:        m.TriangleCount,
		IsPotentiallyInvalid: m.IsPotentiallyInvalid,
		Description:          m.Description,
	}
	if m.HasCatalog {
		c := &asset.Catalog{LevelRestrictions: []string{}}
		if m.Category != nil {
			c.Category = json.RawMessage(*m.Category)
		}
		if m.Path != nil {
			c.Path = *m.Path
		}
		if m.PhysicsCost != nil {
			c.PhysicsCost = json.RawMessage(*m.PhysicsCost)
		}
		if m.LevelRestrictions != nil {
			if err := json.Unmarshal([]byte(*m.LevelRestrictions), &c.LevelRestrictions); err != nil {
				return asset.Record{}, fmt.Errorf("store: %s: level restrictions: %w", m.Name, err)
			}
		}
		rec.Catalog = c
	}
	return rec, nil
}
