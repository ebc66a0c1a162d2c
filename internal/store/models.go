package store

import "time"

// AssetRecordModel is one row per asset name.
type AssetRecordModel struct {
	ID                   uint   `gorm:"primaryKey"`
	Name                 string `gorm:"uniqueIndex;not null"`
	MinX                 float64
	MinY                 float64
	MinZ                 float64
	MaxX                 float64
	MaxY                 float64
	MaxZ                 float64
	BoundingBoxVolume    float64
	Footprint            float64
	Height               float64
	Volume               float64
	VolumeRatio          *float64
	CenterX              float64
	CenterY              float64
	CenterZ              float64
	IsWatertight         *bool
	TriangleCount        *int
	IsPotentiallyInvalid *bool
	HasCatalog           bool
	Path                 *string
	PhysicsCost          *string // raw JSON value
	Category             *string // raw JSON value
	LevelRestrictions    *string // JSON array
	Description          *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (AssetRecordModel) TableName() string { return "asset_records" }
