package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/elements"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	MissingLinkIDMessage   = "ERROR: Missing parameter pgpt_id"
	MissingLinkTextMessage = "Please click the correct link on the page. Remember to set both the text and the pgpt_id parameter."
	DownloadStartedMessage = "Link clicked and file download started successfully!"
	NoNavigationMessage    = "NOTICE: The click did not cause a navigation."
)

// ClickArgs are the arguments of click_link. pp_id is the legacy name of
// pgpt_id.
type ClickArgs struct {
	PgptID *ElementID `json:"pgpt_id"`
	PPID   *ElementID `json:"pp_id"`
	Text   string     `json:"text"`
}

// ID returns the marker id, whichever key carried it.
func (a ClickArgs) ID() (int, bool) {
	return firstID(a.PgptID, a.PPID)
}

// ClickPage is what click_link needs from the page.
type ClickPage interface {
	browser.Navigator
	browser.Interactor
	browser.Downloads
}

// Click clicks a marked element and waits for the page to move.
type Click struct {
	page     ClickPage
	elements Elements
	timeout  time.Duration
}

// NewClick creates the click_link action.
func NewClick(page ClickPage, els Elements, settings Settings) *Click {
	return &Click{page: page, elements: els, timeout: settings.navigationTimeout()}
}

func (a *Click) Name() string { return "click_link" }
func (a *Click) Kind() Kind   { return KindClick }

func (a *Click) Description() string {
	return "Clicks a link with the given pgpt_id on the page. Note that pgpt_id is required and you must use the corresponding pgpt-id attribute from the page content. Add the text of the link to confirm that you are clicking the right link."
}

func (a *Click) Schema() map[string]interface{} {
	return BaseSchema(
		map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "The text on the link you want to click",
			},
			"pgpt_id": map[string]interface{}{
				"type":        "number",
				"description": "The pgpt-id of the link to click (from the page content)",
			},
		},
		[]string{"text", "pgpt_id"},
	)
}

func (a *Click) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[ClickArgs](raw)
	if err != nil {
		return Result{}, err
	}

	id, ok := args.ID()
	if !ok {
		return Result{Message: MissingLinkIDMessage}, nil
	}
	if strings.TrimSpace(args.Text) == "" {
		return Result{Message: MissingLinkTextMessage, DropLastTurn: true}, nil
	}
	if a.page == nil {
		return Result{}, types.ErrMissingPage
	}

	var link elements.Element
	if a.elements != nil {
		link, _ = a.elements.Element(id)
	}
	debugLog.Infof("Clicking link %d %q", id, args.Text)

	selector := elements.SelectorFor(id)
	// Reset the download flag so only this click is observed.
	a.page.DownloadStarted()

	err = a.page.ExpectNavigation(ctx, a.timeout, func() error {
		return a.page.Click(ctx, selector)
	})
	if a.page.DownloadStarted() {
		return Result{Message: DownloadStartedMessage, SuppressRescrape: true}, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, err
		}
		debugLog.Warnf("Click on %s failed: %v", selector, err)
		if types.IsTimeout(err) {
			return Result{Message: NoNavigationMessage}, nil
		}
		return Result{Message: notClickableMessage(id, link.Text)}, nil
	}
	return Result{Message: fmt.Sprintf("Link clicked! You are now on %s", a.page.URL())}, nil
}

func notClickableMessage(id int, text string) string {
	return fmt.Sprintf(`Sorry, but link number %d (%s) is not clickable, please select another link or another command. You can also try to go to the link URL directly with "goto_url".`, id, text)
}
