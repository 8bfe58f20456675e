package timeline

import "math"

// DefaultSnapTolerance is the pointer distance, in pixels, inside which a
// drag snaps to a boundary.
const DefaultSnapTolerance = 20.0

// SnapKind classifies a snap zone.
type SnapKind int

const (
	SnapTimelineStart SnapKind = iota
	SnapClipStart
	SnapClipEnd
)

func (k SnapKind) String() string {
	switch k {
	case SnapClipStart:
		return "start"
	case SnapClipEnd:
		return "end"
	default:
		return "timeline-start"
	}
}

// SnapZone is a pixel position a dragged clip can snap to.
type SnapZone struct {
	X      float64
	Kind   SnapKind
	Index  int // index of the clip among the non-dragged clips
	ClipID string
}

// SnapZones returns the track start plus the start and end of every clip
// other than the dragged one, laid out as if the dragged clip were removed.
func SnapZones(trackClips []Clip, draggedID string, pixelsPerSecond float64) []SnapZone {
	zones := []SnapZone{{X: 0, Kind: SnapTimelineStart}}
	t := 0.0
	for i, c := range without(trackClips, draggedID) {
		end := t + c.ActiveDuration()
		zones = append(zones,
			SnapZone{X: t * pixelsPerSecond, Kind: SnapClipStart, Index: i, ClipID: c.ID},
			SnapZone{X: end * pixelsPerSecond, Kind: SnapClipEnd, Index: i, ClipID: c.ID},
		)
		t = end
	}
	return zones
}

// NearestSnapZone returns the zone closest to pointerX, provided it is
// strictly closer than tolerancePx. Ties keep the earlier zone.
func NearestSnapZone(pointerX float64, zones []SnapZone, tolerancePx float64) (SnapZone, bool) {
	best := -1
	bestDist := tolerancePx
	for i, z := range zones {
		d := math.Abs(pointerX - z.X)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return SnapZone{}, false
	}
	return zones[best], true
}

// DropIndexFromSnapZone converts a snap zone into a drop index.
func DropIndexFromSnapZone(z SnapZone) int {
	switch z.Kind {
	case SnapClipStart:
		return z.Index
	case SnapClipEnd:
		return z.Index + 1
	default:
		return 0
	}
}

// SnappedDropIndex resolves a drag release: a nearby snap zone decides the
// drop index, otherwise the midpoint rule of DropIndex applies.
func SnappedDropIndex(trackClips []Clip, draggedID string, pointerX, pixelsPerSecond, tolerancePx float64) int {
	zones := SnapZones(trackClips, draggedID, pixelsPerSecond)
	if z, ok := NearestSnapZone(pointerX, zones, tolerancePx); ok {
		return DropIndexFromSnapZone(z)
	}
	return DropIndex(trackClips, draggedID, pointerX, pixelsPerSecond)
}
