// Package agent runs a browsing session.
//
// A session starts with the Planner, which forces the model to propose a
// plan and loops until the operator accepts one. The Runner then takes
// over: each step executes the model's latest turn (an action call or free
// text for the operator), attaches the current page content and sends the
// result back through the broker. Session wires both to a page, a model
// client and a prompter from a config.Config.
//
// Example usage:
//
//	cfg := config.Default()
//	page, _ := browser.Launch(ctx, browser.Options{Headless: true})
//	client, _ := openai.NewClient(cfg.APIKey())
//
//	session, err := agent.NewSession(cfg, page, client,
//	    approval.NewTerminal(os.Stdin, os.Stdout, 0),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.Run(ctx, "find the pricing page of example.com"); err != nil {
//	    log.Fatal(err)
//	}
package agent
