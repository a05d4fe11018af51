package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/elements"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	// SectionHeaders matches the header-like elements of a section outline.
	SectionHeaders = "h1,h2,h3,h4,h5,h6,.title,.header"
	// NavigationLandmarks matches the navigation regions of a page.
	NavigationLandmarks = "nav, [role=navigation]"

	DefaultSectionTextSize = 200
	DefaultMaxLinks        = 50
)

// SectionOutlineArgs are the arguments of section_outline.
type SectionOutlineArgs struct {
	MaxSectionTextSize int `json:"maxSectionTextSize"`
}

func (a *SectionOutlineArgs) Validate() error {
	if a.MaxSectionTextSize < 0 {
		return types.NewValidationError("maxSectionTextSize", "ERROR: maxSectionTextSize cannot be negative")
	}
	if a.MaxSectionTextSize == 0 {
		a.MaxSectionTextSize = DefaultSectionTextSize
	}
	return nil
}

// OutlinePage is what the outline actions need from the page.
type OutlinePage interface {
	Title(ctx context.Context) (string, error)
	browser.Evaluator
}

// SectionOutline lists the page title and its header-like sections.
type SectionOutline struct {
	page OutlinePage
}

// NewSectionOutline creates the section_outline action.
func NewSectionOutline(page OutlinePage) *SectionOutline {
	return &SectionOutline{page: page}
}

func (a *SectionOutline) Name() string { return "section_outline" }
func (a *SectionOutline) Kind() Kind   { return KindSectionOutline }

func (a *SectionOutline) Description() string {
	return "creates an outline of the main sections of the page"
}

func (a *SectionOutline) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"maxSectionTextSize": map[string]interface{}{
				"type":        "number",
				"description": "max number of characters to include for a section of text",
				"default":     DefaultSectionTextSize,
			},
		},
		nil,
	)
}

type sectionItem struct {
	Header     string   `json:"header"`
	Paragraphs []string `json:"paragraphs"`
}

func (a *SectionOutline) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[SectionOutlineArgs](raw)
	if err != nil {
		return Result{}, err
	}
	if a.page == nil {
		return Result{}, types.ErrMissingPage
	}

	title, err := a.page.Title(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read page title: %w", err)
	}

	var sections []sectionItem
	if err := a.page.Evaluate(ctx, browser.Call(sectionsScript, SectionHeaders), &sections); err != nil {
		return Result{}, fmt.Errorf("failed to outline sections: %w", err)
	}

	outline := make([]interface{}, 0, len(sections)+1)
	outline = append(outline, map[string]string{"title": title})
	for _, s := range sections {
		outline = append(outline, struct {
			Header string `json:"header"`
			Text   string `json:"text"`
		}{
			Header: elements.NormalizeSpace(s.Header),
			Text:   elements.SliceOff(strings.Join(s.Paragraphs, "\n"), args.MaxSectionTextSize),
		})
	}

	data, err := json.Marshal(outline)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode outline: %w", err)
	}
	return Result{Message: string(data), SuppressRescrape: true}, nil
}

// NavigationOutlineArgs are the arguments of navigation_outline.
type NavigationOutlineArgs struct {
	MaxLinks int `json:"maxLinks"`
}

func (a *NavigationOutlineArgs) Validate() error {
	if a.MaxLinks < 0 {
		return types.NewValidationError("maxLinks", "ERROR: maxLinks cannot be negative")
	}
	if a.MaxLinks == 0 {
		a.MaxLinks = DefaultMaxLinks
	}
	return nil
}

// NavigationLink is a link of a navigation landmark.
type NavigationLink struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Landmark is a navigation region of the page.
type Landmark struct {
	Label   string           `json:"label"`
	Heading string           `json:"heading"`
	Links   []NavigationLink `json:"links"`
}

// NavigationOutline lists the navigation landmarks and their links.
type NavigationOutline struct {
	page browser.Evaluator
}

// NewNavigationOutline creates the navigation_outline action.
func NewNavigationOutline(page browser.Evaluator) *NavigationOutline {
	return &NavigationOutline{page: page}
}

func (a *NavigationOutline) Name() string { return "navigation_outline" }
func (a *NavigationOutline) Kind() Kind   { return KindNavigationOutline }

func (a *NavigationOutline) Description() string {
	return "returns the page outline in terms of navigation elements, such as navigation menus and their links"
}

func (a *NavigationOutline) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"maxLinks": map[string]interface{}{
				"type":        "number",
				"description": "max number of links to include for each navigation element",
				"default":     DefaultMaxLinks,
			},
		},
		nil,
	)
}

func (a *NavigationOutline) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[NavigationOutlineArgs](raw)
	if err != nil {
		return Result{}, err
	}
	if a.page == nil {
		return Result{}, types.ErrMissingPage
	}

	var landmarks []Landmark
	if err := a.page.Evaluate(ctx, browser.Call(landmarksScript, NavigationLandmarks, args.MaxLinks), &landmarks); err != nil {
		return Result{}, fmt.Errorf("failed to outline navigation: %w", err)
	}

	out := make([]Landmark, 0, len(landmarks))
	for _, l := range landmarks {
		links := make([]NavigationLink, 0, len(l.Links))
		for _, link := range l.Links {
			if len(links) == args.MaxLinks {
				break
			}
			links = append(links, NavigationLink{Text: elements.NormalizeSpace(link.Text), Href: link.Href})
		}
		out = append(out, Landmark{
			Label:   elements.NormalizeSpace(l.Label),
			Heading: elements.NormalizeSpace(l.Heading),
			Links:   links,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode outline: %w", err)
	}
	return Result{Message: string(data), SuppressRescrape: true}, nil
}
