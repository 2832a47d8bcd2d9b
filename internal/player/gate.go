package player

// Gate decides whether a property-change notification warrants re-rendering
// the caption. The caption depends only on PlaybackStatus and Metadata, so a
// refresh is due iff the changed-name set intersects that pair. The check
// must be a real intersection: a non-empty change set carrying only
// irrelevant names (Volume, Shuffle, ...) suppresses the refresh.
type Gate struct {
	relevant map[string]struct{}
}

// NewGate creates a gate keyed on the caption-relevant property names
func NewGate() *Gate {
	return &Gate{
		relevant: map[string]struct{}{
			propPlaybackStatus: {},
			propMetadata:       {},
		},
	}
}

// ShouldRefresh reports whether any changed name is caption-relevant
func (g *Gate) ShouldRefresh(changedNames []string) bool {
	for _, name := range changedNames {
		if _, ok := g.relevant[name]; ok {
			return true
		}
	}
	return false
}
