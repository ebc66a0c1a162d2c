// Package asset defines the per-file output record and its JSON file format.
package asset

import (
	"bytes"
	"encoding/json"

	"glbstats/internal/mathutil"
	"glbstats/internal/meshstats"
)

// Range is one axis of a bounding box.
type Range struct {
	Min Float `json:"min"`
	Max Float `json:"max"`
}

// BoundingBox is an axis-aligned box split per axis.
type BoundingBox struct {
	X Range `json:"x"`
	Y Range `json:"y"`
	Z Range `json:"z"`
}

// Point is a 3D position.
type Point struct {
	X Float `json:"x"`
	Y Float `json:"y"`
	Z Float `json:"z"`
}

// Catalog carries the attributes copied from a matched catalog entry.
// PhysicsCost and Category are kept as raw JSON so they are written back
// exactly as the catalog spelled them.
type Catalog struct {
	Path              string          `json:"path"`
	PhysicsCost       json.RawMessage `json:"physicsCost"`
	Category          json.RawMessage `json:"category"`
	LevelRestrictions []string        `json:"levelRestrictions"`
}

// Record is one output object per mesh file. Field order is the published
// output order. A nil Catalog omits the catalog fields entirely; a non-nil
// Catalog writes all four, with nulls where the entry had no value.
type Record struct {
	Name                 string      `json:"name"`
	BoundingBox          BoundingBox `json:"bounding_box"`
	BoundingBoxVolume    Float       `json:"bounding_box_volume"`
	Footprint            Float       `json:"footprint"`
	Height               Float       `json:"height"`
	Volume               Float       `json:"volume"`
	VolumeRatio          *Float      `json:"volume_ratio"`
	CenterOfMass         Point       `json:"center_of_mass"`
	IsWatertight         *bool       `json:"is_watertight"`
	TriangleCount        *int        `json:"triangle_count"`
	IsPotentiallyInvalid *bool       `json:"is_potentially_invalid"`
	*Catalog
	Description *string `json:"description,omitempty"`

	// descriptionKey is set when the decoded input had a description key,
	// null included.
	descriptionKey bool
	// extra holds keys this tool does not produce, in input order.
	extra []field
}

type field struct {
	key   string
	value json.RawMessage
}

// recordFields has Record's layout without its methods.
type recordFields Record

var knownKeys = map[string]bool{
	"name": true, "bounding_box": true, "bounding_box_volume": true,
	"footprint": true, "height": true, "volume": true, "volume_ratio": true,
	"center_of_mass": true, "is_watertight": true, "triangle_count": true,
	"is_potentially_invalid": true, "path": true, "physicsCost": true,
	"category": true, "levelRestrictions": true, "description": true,
}

// MarshalJSON writes the known fields in published order, then any
// unknown keys carried over from the input, then the description.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := recordFields(r)
	fields.Description = nil
	data, err := encodeCompact(fields)
	if err != nil {
		return nil, err
	}
	if len(r.extra) == 0 && !r.HasDescription() {
		return data, nil
	}

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, f := range r.extra {
		key, err := encodeCompact(f.key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	if r.HasDescription() {
		desc, err := encodeCompact(r.Description)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"description":`)
		buf.Write(desc)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the known fields and remembers everything else so
// a rewritten file keeps it.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields recordFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = Record(fields)
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		switch {
		case key == "description":
			r.descriptionKey = true
		case !knownKeys[key]:
			r.extra = append(r.extra, field{key: key, value: value})
		}
	}
	return nil
}

func encodeCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// New assembles a record from the computed statistics and the validity
// analysis of the same scene.
func New(name string, s meshstats.Stats, v meshstats.Validity) Record {
	return Record{
		Name: name,
		BoundingBox: BoundingBox{
			X: Range{Float(s.Min[0]), Float(s.Max[0])},
			Y: Range{Float(s.Min[1]), Float(s.Max[1])},
			Z: Range{Float(s.Min[2]), Float(s.Max[2])},
		},
		BoundingBoxVolume:    Float(s.BoundingBoxVolume),
		Footprint:            Float(s.Footprint),
		Height:               Float(s.Height),
		Volume:               Float(s.Volume),
		VolumeRatio:          FloatPtr(v.VolumeRatio),
		CenterOfMass:         pointOf(s.CenterOfMass),
		IsWatertight:         v.Watertight,
		TriangleCount:        v.TriangleCount,
		IsPotentiallyInvalid: v.PotentiallyInvalid,
	}
}

func pointOf(v mathutil.Vec3) Point {
	return Point{Float(v[0]), Float(v[1]), Float(v[2])}
}

// HasDescription reports whether the record carries a description key,
// even a null one.
func (r Record) HasDescription() bool {
	return r.Description != nil || r.descriptionKey
}

// WithoutDescription returns a copy with the description key removed.
func (r Record) WithoutDescription() Record {
	r.Description = nil
	r.descriptionKey = false
	return r
}
