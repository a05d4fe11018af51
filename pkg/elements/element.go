// Package elements finds the interactive elements of a page, tags each with
// a numeric marker, and renders marked nodes as compact tags for the model.
package elements

import (
	"fmt"
	"regexp"
	"strings"
)

// CandidateSelector matches every element the model may interact with.
const CandidateSelector = `input:not([type=hidden]):not([disabled]), textarea:not([disabled]), button:not([disabled]), [tabindex]:not([tabindex="-1"]), select:not([disabled]), a[href]:not([href="javascript:void(0)"]):not([href="#"])`

const (
	// DefaultLimit caps how many candidates one scan processes.
	DefaultLimit = 400

	// MarkerAttr carries the element id in the DOM.
	MarkerAttr = "pgpt-id"
	// MarkerClassPrefix prefixes the per-element marker class.
	MarkerClassPrefix = "pgpt-element"

	// MaxAttrLength bounds href, placeholder and title.
	MaxAttrLength = 32
	// MaxTextLength bounds visible text.
	MaxTextLength = 200

	truncationMarker = "[..]"
)

var whitespace = regexp.MustCompile(`\s+`)

// Element is an interactive element accepted by a scan.
type Element struct {
	ID          int    `json:"id"`
	Tag         string `json:"tag"`
	Role        string `json:"role,omitempty"`
	Type        string `json:"type,omitempty"`
	Value       string `json:"value,omitempty"`
	Href        string `json:"href,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Title       string `json:"title,omitempty"`
	Text        string `json:"text,omitempty"`
	Visible     bool   `json:"visible"`
}

// Selector returns the CSS selector of the element's marker.
func (e Element) Selector() string {
	return SelectorFor(e.ID)
}

// ScanError records a candidate the page script could not process.
type ScanError struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

// Scan is the result of one annotation pass.
type Scan struct {
	Elements   []Element   `json:"elements"`
	Candidates int         `json:"candidates"`
	Skipped    int         `json:"skipped"`
	Errors     []ScanError `json:"errors,omitempty"`
}

// Find returns the accepted element with id.
func (s *Scan) Find(id int) (Element, bool) {
	if s == nil {
		return Element{}, false
	}
	return Find(s.Elements, id)
}

// Find returns the element with id from list.
func Find(list []Element, id int) (Element, bool) {
	for _, e := range list {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

// SelectorFor returns the CSS selector of marker id.
func SelectorFor(id int) string {
	return fmt.Sprintf(".%s%d", MarkerClassPrefix, id)
}

// SliceOff truncates s to max characters and appends "[..]" when it was
// longer.
func SliceOff(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + truncationMarker
}

// NormalizeSpace collapses whitespace runs to one space and trims.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
