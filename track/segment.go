package track

// Segment is one spawned instance of a catalog template on the track
// Position is along the forward axis only
type Segment struct {
	TemplateIndex int     `json:"templateIndex"`
	Position      float64 `json:"position"`
}
