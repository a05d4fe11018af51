package actions

import (
	"github.com/entrhq/pilot/pkg/agent/approval"
	"github.com/entrhq/pilot/pkg/browser"
)

// AnswerUserName is the alias communicate is also registered under.
const AnswerUserName = "answer_user"

// FileGate is the file access read_file and take_screenshot share.
type FileGate interface {
	FileReader
	FileWriter
}

// Deps are the capabilities the default actions are built from.
type Deps struct {
	Page     browser.Page
	Elements Elements
	Prompter approval.Prompter
	Files    FileGate
	Cost     CostReporter
	Settings Settings
}

// NewDefaultRegistry registers every action of a browsing session.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	search, err := NewSearch(deps.Page, deps.Settings)
	if err != nil {
		return nil, err
	}
	communicate := NewCommunicate(deps.Prompter, deps.Cost, deps.Settings)

	r := NewRegistry()
	for _, reg := range []struct {
		action Action
		id     string
	}{
		{action: NewMakePlan()},
		{action: NewReadFile(deps.Files, deps.Prompter, deps.Settings)},
		{action: NewNavigate(deps.Page)},
		{action: NewClick(deps.Page, deps.Elements, deps.Settings)},
		{action: NewFillForm(deps.Page, deps.Settings)},
		{action: NewScreenshot(deps.Page, deps.Files)},
		{action: communicate},
		{action: communicate, id: AnswerUserName},
		{action: search},
		{action: NewFindCode(deps.Page)},
		{action: NewSectionOutline(deps.Page)},
		{action: NewNavigationOutline(deps.Page)},
	} {
		if err := r.Register(reg.action, reg.id); err != nil {
			return nil, err
		}
	}
	return r, nil
}
