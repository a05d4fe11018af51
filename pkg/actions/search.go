package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/types"
)

// DefaultSearchEngine is used when neither the call nor the config names one.
const DefaultSearchEngine = "presearch"

// InvalidEngineMessage reports an engine without a template.
const InvalidEngineMessage = "Invalid search engine configuration"

// SearchResult is one hit extracted from a results page.
type SearchResult struct {
	Href        string `json:"href"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// SearchEngine knows how to build a query URL and where results live on
// its results page.
type SearchEngine struct {
	Name string
	// QueryURL is the URL prefix the escaped query is appended to.
	QueryURL string

	Result      string
	Link        string
	Title       string
	Description string
}

// URL returns the results URL for query.
func (e SearchEngine) URL(query string) string {
	return e.QueryURL + url.QueryEscape(query)
}

var searchEngines = map[string]SearchEngine{
	"presearch": {
		Name:        "presearch",
		QueryURL:    "https://presearch.com/search?q=",
		Result:      "div.relative",
		Link:        "a.text-results-link",
		Title:       "span[x-html*='result.title']",
		Description: `span[x-html*='result.description'], .result\.description`,
	},
	"google": {
		Name:        "google",
		QueryURL:    "https://google.com/search?q=",
		Result:      "div.g",
		Link:        "a",
		Title:       "h3",
		Description: "div[data-sncf], .VwiC3b",
	},
	"bing": {
		Name:        "bing",
		QueryURL:    "https://www.bing.com/search?q=",
		Result:      "li.b_algo",
		Link:        "h2 a",
		Title:       "h2",
		Description: ".b_caption p",
	},
}

// LookupEngine returns the engine called name, case-insensitively.
func LookupEngine(name string) (SearchEngine, error) {
	engine, ok := searchEngines[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return SearchEngine{}, types.NewConfigurationError("search.engine", InvalidEngineMessage)
	}
	return engine, nil
}

// EngineNames lists the supported engines.
func EngineNames() []string {
	names := make([]string, 0, len(searchEngines))
	for name := range searchEngines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchArgs are the arguments of search.
type SearchArgs struct {
	Query        string `json:"query"`
	SearchEngine string `json:"searchEngine"`
}

func (a *SearchArgs) Validate() error {
	a.Query = strings.TrimSpace(a.Query)
	if a.Query == "" {
		return types.NewValidationError("query", "ERROR: Missing parameter query")
	}
	return nil
}

// SearchPage is what search needs from the page.
type SearchPage interface {
	browser.Navigator
	browser.Evaluator
}

// Search queries a search engine and extracts the results.
type Search struct {
	page          SearchPage
	defaultEngine string
}

// NewSearch creates the search action. The configured default engine is
// checked here so a bad config fails at startup.
func NewSearch(page SearchPage, settings Settings) (*Search, error) {
	engine := settings.DefaultEngine
	if engine == "" {
		engine = DefaultSearchEngine
	}
	if _, err := LookupEngine(engine); err != nil {
		return nil, err
	}
	return &Search{page: page, defaultEngine: strings.ToLower(engine)}, nil
}

func (a *Search) Name() string { return "search" }
func (a *Search) Kind() Kind   { return KindSearch }

func (a *Search) Description() string {
	return "Uses a search engine to find links/urls that best match a specific query"
}

func (a *Search) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "What to query the search engine for",
			},
			"searchEngine": map[string]interface{}{
				"type":        "string",
				"description": "The search engine to use: " + strings.Join(EngineNames(), ", "),
			},
		},
		[]string{"query"},
	)
}

func (a *Search) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[SearchArgs](raw)
	if err != nil {
		return Result{}, err
	}
	if a.page == nil {
		return Result{}, types.ErrMissingPage
	}

	name := args.SearchEngine
	if name == "" {
		name = a.defaultEngine
	}
	engine, err := LookupEngine(name)
	if err != nil {
		return Result{}, err
	}

	target := engine.URL(args.Query)
	debugLog.Infof("Searching %s for %q", engine.Name, args.Query)
	if err := a.page.Goto(ctx, target); err != nil {
		if ctx.Err() != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("Error searching with %s: %v", target, err)}, nil
	}

	results, err := a.results(ctx, engine)
	if err != nil {
		debugLog.Warnf("Failed to extract %s results: %v", engine.Name, err)
		return Result{Message: fmt.Sprintf("You are now on %s", a.page.URL())}, nil
	}

	data, err := json.Marshal(results)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode search results: %w", err)
	}
	return Result{Message: string(data)}, nil
}

func (a *Search) results(ctx context.Context, engine SearchEngine) ([]SearchResult, error) {
	results := []SearchResult{}
	script := browser.Call(searchResultsScript, engine.Result, engine.Link, engine.Title, engine.Description)
	if err := a.page.Evaluate(ctx, script, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []SearchResult{}
	}
	return results, nil
}
