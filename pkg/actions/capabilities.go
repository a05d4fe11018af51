package actions

import (
	"context"
	"sync"
	"time"

	"github.com/entrhq/pilot/pkg/elements"
	"github.com/entrhq/pilot/pkg/security/filegate"
)

// Scraper re-annotates the page and returns the accepted elements.
type Scraper interface {
	Scrape(ctx context.Context) (*elements.Scan, error)
}

// ScraperFunc adapts a function to Scraper.
type ScraperFunc func(ctx context.Context) (*elements.Scan, error)

// Scrape calls f.
func (f ScraperFunc) Scrape(ctx context.Context) (*elements.Scan, error) {
	return f(ctx)
}

// Elements looks up an element of the latest scrape by marker id.
type Elements interface {
	Element(id int) (elements.Element, bool)
}

// CostReporter publishes the accumulated model cost to the operator.
type CostReporter interface {
	ReportCurrentCost()
}

// CostReporterFunc adapts a function to CostReporter.
type CostReporterFunc func()

// ReportCurrentCost calls f.
func (f CostReporterFunc) ReportCurrentCost() {
	f()
}

// FileReader is the part of the file gate read_file needs.
type FileReader interface {
	CheckRead(path string) (string, error)
	Exists(path string) bool
	ReadText(path string) (string, error)
}

// FileWriter is the part of the file gate take_screenshot needs.
type FileWriter interface {
	WriteFile(path string, data []byte) (string, error)
}

var (
	_ FileReader = (*filegate.Gate)(nil)
	_ FileWriter = (*filegate.Gate)(nil)
)

// ElementIndex remembers the elements of the latest scrape. It is the
// Scraper the runner enriches through, and the Elements the actions read.
type ElementIndex struct {
	scraper Scraper

	mu   sync.RWMutex
	scan *elements.Scan
}

// NewElementIndex wraps scraper.
func NewElementIndex(scraper Scraper) *ElementIndex {
	return &ElementIndex{scraper: scraper}
}

// Scrape re-annotates the page and replaces the remembered elements.
func (x *ElementIndex) Scrape(ctx context.Context) (*elements.Scan, error) {
	scan, err := x.scraper.Scrape(ctx)
	if err != nil {
		return nil, err
	}
	x.mu.Lock()
	x.scan = scan
	x.mu.Unlock()
	return scan, nil
}

// Element returns the element with id from the latest scrape.
func (x *ElementIndex) Element(id int) (elements.Element, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.scan.Find(id)
}

// Current returns the latest scrape, or nil before the first one.
func (x *ElementIndex) Current() *elements.Scan {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.scan
}

// Settings are the session options actions depend on.
type Settings struct {
	Autopilot         bool
	OneShot           bool
	ContextLimit      int
	NavigationTimeout time.Duration
	DefaultEngine     string
}

func (s Settings) navigationTimeout() time.Duration {
	if s.NavigationTimeout <= 0 {
		return DefaultNavigationTimeout
	}
	return s.NavigationTimeout
}

// DefaultNavigationTimeout bounds how long click and submit wait for the
// page to move.
const DefaultNavigationTimeout = 6 * time.Second
