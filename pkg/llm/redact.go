package llm

import (
	"strings"

	"github.com/entrhq/pilot/pkg/document"
	"github.com/entrhq/pilot/pkg/types"
)

// RedactedContent replaces the page snapshot of pages the session left.
const RedactedContent = "[page content redacted]"

// Redact returns a copy of turns where every turn stamped with a URL other
// than the last turn's has its page content block replaced. Turns without
// a URL are kept. The input is not modified.
func Redact(turns []types.Turn) []types.Turn {
	out := types.CloneTurns(turns)
	if len(out) == 0 {
		return out
	}

	current := out[len(out)-1].URL
	for i := range out {
		turn := &out[i]
		if turn.URL == "" || turn.URL == current {
			continue
		}
		idx := strings.Index(turn.Content, document.StartMarker)
		if idx < 0 {
			continue
		}
		turn.Content = turn.Content[:idx] + RedactedContent
		turn.Redacted = true
	}
	return out
}
