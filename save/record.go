// Package save persists track state together with the player fields it travels with
package save

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/endless-runner/track"
)

var (
	// ErrNotFound means the slot holds no record; callers treat it as a new game
	ErrNotFound = errors.New("save slot not found")

	// ErrCorrupt means a record exists but cannot be decoded or fails validation
	ErrCorrupt = errors.New("save record corrupt")

	// ErrSaveBlocked means the last Load failed, so the slot may still hold a record the
	// session never saw; Save refuses until a Load succeeds or the slot is wiped
	ErrSaveBlocked = errors.New("save blocked after failed load")
)

// Vec3 is a stored position; only Z, the forward axis, matters to the track
type Vec3 struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
	Z float64 `toml:"z" json:"z"`
}

// SegmentRecord is one stored track segment
type SegmentRecord struct {
	TemplateIndex int  `toml:"template_index" json:"templateIndex"`
	Position      Vec3 `toml:"position" json:"position"`
}

// Record is everything stored under one slot
type Record struct {
	PlayerPosition Vec3            `toml:"player_position" json:"playerPosition"`
	PickupCount    int             `toml:"pickup_count" json:"pickupCount"`
	Segments       []SegmentRecord `toml:"segments" json:"generatedSegments"`
}

// SegmentsFromTrack converts a track export into stored segments
func SegmentsFromTrack(segs []track.Segment) []SegmentRecord {
	if len(segs) == 0 {
		return nil
	}
	out := make([]SegmentRecord, len(segs))
	for i, s := range segs {
		out[i] = SegmentRecord{
			TemplateIndex: s.TemplateIndex,
			Position:      Vec3{Z: s.Position},
		}
	}
	return out
}

// TrackSegments converts stored segments back into Reset input
// Catalog bounds are checked by the generator, not here
func (r Record) TrackSegments() []track.Segment {
	if len(r.Segments) == 0 {
		return nil
	}
	out := make([]track.Segment, len(r.Segments))
	for i, s := range r.Segments {
		out[i] = track.Segment{
			TemplateIndex: s.TemplateIndex,
			Position:      s.Position.Z,
		}
	}
	return out
}

// Validate rejects records no store should hold
// Per-segment problems are left to Reset, which drops and counts them
func (r Record) Validate() error {
	if !finiteVec(r.PlayerPosition) {
		return fmt.Errorf("%w: player position %+v not finite", ErrCorrupt, r.PlayerPosition)
	}
	if r.PickupCount < 0 {
		return fmt.Errorf("%w: negative pickup count %d", ErrCorrupt, r.PickupCount)
	}
	return nil
}

// clone deep-copies r so stores never share slices with callers
func (r Record) clone() Record {
	if r.Segments != nil {
		r.Segments = append([]SegmentRecord(nil), r.Segments...)
	}
	return r
}

func finiteVec(v Vec3) bool {
	for _, f := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
