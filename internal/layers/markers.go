package layers

import (
	"github.com/paulmach/orb/geojson"

	"github.com/five82/chronomap/internal/geodata"
)

// LabelClass buckets settlement labels by admin level.
type LabelClass string

const (
	LabelNone   LabelClass = ""
	LabelLevel1 LabelClass = "level1-city-label"
	LabelLevel2 LabelClass = "level2-city-label"
	LabelLevel3 LabelClass = "level3-city-label"
)

// Marker fills per admin level.
const (
	MarkerFillLevel1 = "#ea580c"
	MarkerFillLevel2 = "#ea580c"
	MarkerFillLevel3 = "#fdba74"
)

// MarkerBucket is the visual weight of one admin level.
type MarkerBucket struct {
	Radius     float64
	FillColor  string
	LabelClass LabelClass
}

var markerBuckets = map[int]MarkerBucket{
	1: {Radius: 8, FillColor: MarkerFillLevel1, LabelClass: LabelLevel1},
	2: {Radius: 4, FillColor: MarkerFillLevel2, LabelClass: LabelLevel2},
	3: {Radius: 3, FillColor: MarkerFillLevel3, LabelClass: LabelLevel3},
}

// BucketFor returns the bucket of an admin level; unrecognised levels fall
// back to the level-3 treatment.
func BucketFor(level int) MarkerBucket {
	if b, ok := markerBuckets[level]; ok {
		return b
	}
	return markerBuckets[3]
}

// IsSecondary partitions settlements: level 3 draws on the secondary layer,
// everything else on the primary one.
func IsSecondary(level int) bool {
	return level == 3
}

// PointMarker builds the marker for a settlement feature.
func PointMarker(f *geojson.Feature) Marker {
	bucket := BucketFor(geodata.AdminLevel(f.Properties))
	s := baseMarker
	s.Radius = bucket.Radius
	s.FillColor = bucket.FillColor
	return Marker{
		Style:      s,
		Label:      geodata.String(f.Properties, "name"),
		LabelClass: bucket.LabelClass,
	}
}

// LabelThresholds are the zoom levels at which level-2 and level-3 labels
// appear. Level-1 labels are always shown.
type LabelThresholds struct {
	Level2 float64
	Level3 float64
}

// DefaultLabelThresholds returns the stock thresholds.
func DefaultLabelThresholds() LabelThresholds {
	return LabelThresholds{Level2: 7, Level3: 8}
}

// LabelOpacity returns the label opacity of a class at a zoom level.
func (t LabelThresholds) LabelOpacity(class LabelClass, zoom float64) float64 {
	switch class {
	case LabelLevel1:
		return 1
	case LabelLevel2:
		if zoom >= t.Level2 {
			return 1
		}
	case LabelLevel3:
		if zoom >= t.Level3 {
			return 1
		}
	}
	return 0
}
