package elements

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/dump"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("elements")
	if err != nil {
		debugLog.Warnf("Failed to initialize elements logger, using stderr fallback: %v", err)
	}
}

// SelectedDumpFile is written to the dump directory after every scan.
const SelectedDumpFile = "selected.json"

// Annotator marks the interactive elements of a page.
type Annotator struct {
	limit   int
	dumpDir string
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithLimit sets how many candidates a scan processes. Non-positive values
// keep the default.
func WithLimit(limit int) Option {
	return func(a *Annotator) {
		if limit > 0 {
			a.limit = limit
		}
	}
}

// WithDumpDir writes the selected elements of every scan to
// dir/selected.json.
func WithDumpDir(dir string) Option {
	return func(a *Annotator) {
		a.dumpDir = dir
	}
}

// NewAnnotator creates an annotator.
func NewAnnotator(opts ...Option) *Annotator {
	a := &Annotator{limit: DefaultLimit}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Limit returns the candidate cap.
func (a *Annotator) Limit() int {
	return a.limit
}

// Annotate scans page in a single script round trip. Candidates are
// numbered from 1 in document order; rejected candidates still consume an
// id.
func (a *Annotator) Annotate(ctx context.Context, page browser.Evaluator) (*Scan, error) {
	if page == nil {
		return nil, types.ErrMissingPage
	}

	script := browser.Call(annotateScript, CandidateSelector, a.limit, MarkerClassPrefix, MarkerAttr)

	var scan Scan
	if err := page.Evaluate(ctx, script, &scan); err != nil {
		return nil, fmt.Errorf("failed to annotate page: %w", err)
	}

	for i := range scan.Elements {
		scan.Elements[i] = truncate(scan.Elements[i])
	}
	for _, e := range scan.Errors {
		debugLog.Warnf("candidate %d failed: %s", e.ID, e.Error)
	}
	debugLog.Debugf("selected %d of %d candidates, skipped %d", len(scan.Elements), scan.Candidates, scan.Skipped)

	if a.dumpDir != "" {
		if err := a.dump(scan.Elements); err != nil {
			debugLog.Warnf("failed to dump selected elements: %v", err)
		}
	}
	return &scan, nil
}

func truncate(e Element) Element {
	e.Href = SliceOff(e.Href, MaxAttrLength)
	e.Placeholder = SliceOff(e.Placeholder, MaxAttrLength)
	e.Title = SliceOff(e.Title, MaxAttrLength)
	e.Text = SliceOff(NormalizeSpace(e.Text), MaxTextLength)
	return e
}

func (a *Annotator) dump(list []Element) error {
	if list == nil {
		list = []Element{}
	}
	return dump.WriteJSON(filepath.Join(a.dumpDir, SelectedDumpFile), list)
}
