package actions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/browser/browsertest"
	"github.com/entrhq/pilot/pkg/elements"
	"github.com/entrhq/pilot/pkg/types"
)

func TestNavigate(t *testing.T) {
	tests := []struct {
		name     string
		gotoErr  error
		redirect string
		want     string
	}{
		{name: "success", want: "You are now on https://example.com"},
		{name: "redirect reports the final url", redirect: "https://www.example.com/", want: "You are now on https://www.example.com/"},
		{name: "aborted download", gotoErr: errors.New("page.goto: net::ERR_ABORTED at https://example.com"), want: AbortedNavigationMessage},
		{name: "other error", gotoErr: errors.New("net::ERR_NAME_NOT_RESOLVED"), want: NavigationErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.New("about:blank", "")
			page.GotoErr = tt.gotoErr
			page.RedirectTo = tt.redirect

			result, err := NewNavigate(page).Execute(context.Background(), json.RawMessage(`{"url":"https://example.com"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Message)
			assert.False(t, result.SuppressRescrape)

			calls := page.CallsTo("Goto")
			require.Len(t, calls, 1)
			assert.Equal(t, []string{"https://example.com"}, calls[0].Args)
		})
	}
}

func TestNavigateMissingURL(t *testing.T) {
	page := browsertest.New("about:blank", "")
	_, err := NewNavigate(page).Execute(context.Background(), json.RawMessage(`{}`))

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "url", verr.Field)
	assert.False(t, page.Touched())
}

func TestNavigateWithoutPage(t *testing.T) {
	_, err := NewNavigate(nil).Execute(context.Background(), json.RawMessage(`{"url":"https://example.com"}`))
	assert.ErrorIs(t, err, types.ErrMissingPage)
}

func indexWith(t *testing.T, list ...elements.Element) *ElementIndex {
	t.Helper()
	index := NewElementIndex(ScraperFunc(func(context.Context) (*elements.Scan, error) {
		return &elements.Scan{Elements: list, Candidates: len(list)}, nil
	}))
	_, err := index.Scrape(context.Background())
	require.NoError(t, err)
	return index
}

func TestClickMissingID(t *testing.T) {
	page := browsertest.New("https://example.com", "Example")

	result, err := NewClick(page, nil, Settings{}).Execute(context.Background(), json.RawMessage(`{"text":"Home"}`))
	require.NoError(t, err)
	assert.Equal(t, MissingLinkIDMessage, result.Message)
	assert.False(t, page.Touched(), "page must not be touched")
}

func TestClickMissingText(t *testing.T) {
	page := browsertest.New("https://example.com", "Example")

	result, err := NewClick(page, nil, Settings{}).Execute(context.Background(), json.RawMessage(`{"pgpt_id": 3}`))
	require.NoError(t, err)
	assert.Equal(t, MissingLinkTextMessage, result.Message)
	assert.True(t, result.DropLastTurn)
	assert.False(t, page.Touched())
}

func TestClickOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		args         string
		setup        func(p *browsertest.Page)
		want         string
		wantSuppress bool
	}{
		{
			name:  "navigates",
			args:  `{"pgpt_id": 3, "text": "Next"}`,
			setup: func(p *browsertest.Page) { p.NavigateTo = "https://example.com/next" },
			want:  "Link clicked! You are now on https://example.com/next",
		},
		{
			name:  "legacy pp_id",
			args:  `{"pp_id": "3", "text": "Next"}`,
			setup: func(p *browsertest.Page) { p.NavigateTo = "https://example.com/next" },
			want:  "Link clicked! You are now on https://example.com/next",
		},
		{
			name:         "download",
			args:         `{"pgpt_id": 3, "text": "report.pdf"}`,
			setup:        func(p *browsertest.Page) { p.DownloadOnClick = true },
			want:         DownloadStartedMessage,
			wantSuppress: true,
		},
		{
			name: "no navigation",
			args: `{"pgpt_id": 3, "text": "Next"}`,
			setup: func(p *browsertest.Page) {
				p.NavigationErr = types.NewTimeoutError("navigation", 6*time.Second, nil)
			},
			want: NoNavigationMessage,
		},
		{
			name:  "not clickable",
			args:  `{"pgpt_id": 3, "text": "Next"}`,
			setup: func(p *browsertest.Page) { p.ClickErr = errors.New("element is not visible") },
			want:  `Sorry, but link number 3 (Next page) is not clickable, please select another link or another command. You can also try to go to the link URL directly with "goto_url".`,
		},
		{
			name:  "not clickable and unknown",
			args:  `{"pgpt_id": 8, "text": "Gone"}`,
			setup: func(p *browsertest.Page) { p.ClickErr = errors.New("no element") },
			want:  `Sorry, but link number 8 () is not clickable, please select another link or another command. You can also try to go to the link URL directly with "goto_url".`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.New("https://example.com", "Example")
			tt.setup(page)
			index := indexWith(t, elements.Element{ID: 3, Tag: "a", Text: "Next page"})

			result, err := NewClick(page, index, Settings{}).Execute(context.Background(), json.RawMessage(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Message)
			assert.Equal(t, tt.wantSuppress, result.SuppressRescrape)
			assert.False(t, result.DropLastTurn)
		})
	}
}

func TestClickUsesMarkerAndTimeout(t *testing.T) {
	page := browsertest.New("https://example.com", "Example")
	page.NavigateTo = "https://example.com/next"

	_, err := NewClick(page, nil, Settings{NavigationTimeout: 2 * time.Second}).
		Execute(context.Background(), json.RawMessage(`{"pgpt_id": 12, "text": "Next"}`))
	require.NoError(t, err)

	clicks := page.CallsTo("Click")
	require.Len(t, clicks, 1)
	assert.Equal(t, []string{".pgpt-element12"}, clicks[0].Args)

	waits := page.CallsTo("ExpectNavigation")
	require.Len(t, waits, 1)
	assert.Equal(t, []string{"2s"}, waits[0].Args)
}

func TestClickDefaultTimeout(t *testing.T) {
	page := browsertest.New("https://example.com", "Example")
	page.NavigateTo = "https://example.com/next"

	_, err := NewClick(page, nil, Settings{}).Execute(context.Background(), json.RawMessage(`{"pgpt_id": 1, "text": "Next"}`))
	require.NoError(t, err)

	waits := page.CallsTo("ExpectNavigation")
	require.Len(t, waits, 1)
	assert.Equal(t, []string{"6s"}, waits[0].Args)
}
