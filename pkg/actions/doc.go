// Package actions implements what the model can do to a page.
//
// Every action decodes its arguments into a typed struct at the JSON
// boundary and returns an explicit Result. Actions receive only the page
// capabilities they use (browser.Navigator, browser.Evaluator, ...), so a
// read-only action cannot click and an outline cannot navigate.
//
// The Registry maps wire names to actions:
//
//	r, err := actions.NewDefaultRegistry(actions.Deps{Page: page, ...})
//	result := r.Dispatch(ctx, actions.Request{Name: "goto_url", Arguments: raw})
//
// Dispatch never fails. Unknown names and action errors become messages the
// model can react to.
package actions
