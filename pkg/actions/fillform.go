package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/pilot/pkg/browser"
	"github.com/entrhq/pilot/pkg/elements"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	// FieldAttr tags fields resolved by label or name.
	FieldAttr = "pgpt-field"

	SubmitErrorMessage = "There was an error submitting the form.\n"
)

// FormField is one entry of enter_data's form_data.
type FormField struct {
	PgptID *ElementID `json:"pgpt_id"`
	PPID   *ElementID `json:"pp_id"`
	Label  string     `json:"label"`
	Name   string     `json:"name"`
	Text   string     `json:"text"`
	Select []string   `json:"select"`
	Index  *int       `json:"index"`
	Check  *bool      `json:"check"`
}

// ID returns the marker id, whichever key carried it.
func (f FormField) ID() (int, bool) {
	return firstID(f.PgptID, f.PPID)
}

func (f FormField) reference() string {
	if id, ok := f.ID(); ok {
		return strconv.Itoa(id)
	}
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// FillFormArgs are the arguments of enter_data.
type FillFormArgs struct {
	FormData []FormField `json:"form_data"`
	Submit   bool        `json:"submit"`
}

func (a *FillFormArgs) Validate() error {
	if len(a.FormData) == 0 && !a.Submit {
		return types.NewValidationError("form_data", "ERROR: Missing parameter form_data")
	}
	return nil
}

// FormPage is what enter_data needs from the page.
type FormPage interface {
	browser.Navigator
	browser.Evaluator
	browser.Interactor
}

// fieldInfo is the classification fieldScript returns.
type fieldInfo struct {
	Found bool   `json:"found"`
	Via   string `json:"via"`
	Tag   string `json:"tag"`
	Type  string `json:"type"`
	Name  string `json:"name"`
}

func (f fieldInfo) submittable() bool {
	return strings.EqualFold(f.Tag, "BUTTON") || f.Type == "submit" || f.Type == "button"
}

func (f fieldInfo) toggle() bool {
	return f.Type == "checkbox" || f.Type == "radio"
}

// FillForm types into, selects and toggles form fields, then optionally
// submits the form.
type FillForm struct {
	page    FormPage
	timeout time.Duration
}

// NewFillForm creates the enter_data action.
func NewFillForm(page FormPage, settings Settings) *FillForm {
	return &FillForm{page: page, timeout: settings.navigationTimeout()}
}

func (a *FillForm) Name() string { return "enter_data" }
func (a *FillForm) Kind() Kind   { return KindFillForm }

func (a *FillForm) Description() string {
	return "Types text to input fields and optionally submit the form"
}

func (a *FillForm) Schema() map[string]interface{} {
	field := BaseSchema(
		map[string]interface{}{
			"pgpt_id": map[string]interface{}{
				"type":        "number",
				"description": "The pgpt-id attribute of the field to enter data into",
			},
			"label": map[string]interface{}{
				"type":        "string",
				"description": "The label of the field to enter data into",
			},
			"name": map[string]interface{}{
				"type":        "string",
				"description": "The name of the field to enter data into",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "The text to type",
			},
			"select": map[string]interface{}{
				"type":        "array",
				"description": "list of options to select",
				"items": map[string]interface{}{
					"type":        "string",
					"description": "option to select",
				},
			},
			"index": map[string]interface{}{
				"type":        "number",
				"description": "index number of option to select",
			},
			"check": map[string]interface{}{
				"type":        "boolean",
				"description": "whether to check or uncheck a checkbox or radio button",
			},
		},
		nil,
	)
	return BaseSchema(
		map[string]interface{}{
			"form_data": map[string]interface{}{
				"type":  "array",
				"items": field,
			},
			"submit": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether to submit the form after filling the fields",
			},
		},
		[]string{"form_data", "submit"},
	)
}

func (a *FillForm) Execute(ctx context.Context, raw json.RawMessage) (Result, error) {
	args, err := Decode[FillFormArgs](raw)
	if err != nil {
		return Result{}, err
	}
	if a.page == nil {
		return Result{}, types.ErrMissingPage
	}

	var (
		msg    strings.Builder
		submit = args.Submit
		first  string // first resolved field
		last   string // last field that was filled
		batch  = uuid.NewString()
	)

	for i, field := range args.FormData {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		info, selector, err := a.resolve(ctx, field, fmt.Sprintf("%s-%d", batch, i))
		if err != nil {
			debugLog.Warnf("Could not resolve field %s: %v", field.reference(), err)
			fmt.Fprintf(&msg, "Error typing \"%s\" to input field ID %s\n", field.Text, field.reference())
			continue
		}
		if first == "" {
			first = selector
		}

		// Models sometimes type into buttons to press them.
		if info.submittable() {
			submit = true
			continue
		}

		line, err := a.fill(ctx, selector, info, field)
		if err != nil {
			debugLog.Warnf("Could not fill field %s: %v", field.reference(), err)
			fmt.Fprintf(&msg, "Error typing \"%s\" to input field ID %s\n", field.Text, field.reference())
			continue
		}
		last = selector
		msg.WriteString(line)
	}

	if submit {
		target := last
		if target == "" {
			target = first
		}
		msg.WriteString(a.submit(ctx, target))
	}

	return Result{Message: msg.String()}, nil
}

// resolve finds the field and returns its classification and a selector
// addressing it.
func (a *FillForm) resolve(ctx context.Context, field FormField, token string) (fieldInfo, string, error) {
	marker := ""
	if id, ok := field.ID(); ok {
		marker = elements.SelectorFor(id)
	}

	var info fieldInfo
	script := browser.Call(fieldScript, marker, field.Label, field.Name, FieldAttr, token)
	if err := a.page.Evaluate(ctx, script, &info); err != nil {
		return fieldInfo{}, "", err
	}
	if !info.Found {
		return fieldInfo{}, "", types.NewNotFoundError("field", field.reference())
	}

	if info.Via == "marker" {
		return info, marker, nil
	}
	return info, fmt.Sprintf("[%s=%q]", FieldAttr, token), nil
}

// fill applies one field and returns its report line.
func (a *FillForm) fill(ctx context.Context, selector string, info fieldInfo, field FormField) (string, error) {
	name := info.Name
	if name == "" {
		name = field.Name
	}

	switch {
	case strings.EqualFold(info.Tag, "SELECT"):
		spec := browser.SelectSpec{Labels: field.Select, Index: field.Index}
		if len(spec.Labels) == 0 && spec.Index == nil && field.Text != "" {
			spec.Labels = []string{field.Text}
		}
		if len(spec.Labels) == 0 && spec.Index == nil {
			return "", types.NewValidationError("select", "no option given")
		}
		selected, err := a.page.SelectOptions(ctx, selector, spec)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Selected \"%s\" in field \"%s\"\n", strings.Join(selected, ", "), name), nil

	case info.toggle():
		checked, ok := checkState(field)
		if !ok {
			return "", types.NewValidationError("check", fmt.Sprintf("cannot tell whether %q means check or uncheck", field.Text))
		}
		if err := a.page.SetChecked(ctx, selector, checked); err != nil {
			return "", err
		}
		verb := "Checked"
		if !checked {
			verb = "Unchecked"
		}
		return fmt.Sprintf("%s field \"%s\"\n", verb, name), nil
	}

	if err := a.page.Type(ctx, selector, field.Text); err != nil {
		return "", err
	}
	debugLog.Infof("Typing %q to %s", strings.ReplaceAll(field.Text, "\n", " "), name)
	return fmt.Sprintf("Typed \"%s\" to input field \"%s\"\n", field.Text, name), nil
}

// submit submits the form enclosing target and reports the outcome.
func (a *FillForm) submit(ctx context.Context, target string) string {
	if target == "" {
		debugLog.Warnf("Submit requested without a resolved field")
		return SubmitErrorMessage
	}

	debugLog.Infof("Submitting form of %s", target)
	err := a.page.ExpectNavigation(ctx, a.timeout, func() error {
		return a.page.Evaluate(ctx, browser.Call(submitScript, target), nil)
	})
	if err != nil {
		debugLog.Warnf("Error submitting form: %v", err)
		return SubmitErrorMessage
	}
	return fmt.Sprintf("Form sent! You are now on %s\n", a.page.URL())
}

// checkState reads the desired toggle state from check, or from text.
func checkState(field FormField) (checked, ok bool) {
	if field.Check != nil {
		return *field.Check, true
	}
	switch strings.ToLower(strings.TrimSpace(field.Text)) {
	case "yes", "y", "check", "x", "true":
		return true, true
	case "no", "n", "uncheck", "false":
		return false, true
	}
	return false, false
}
