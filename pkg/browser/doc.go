// Package browser is the page capability a browsing session drives.
//
// A session never touches a driver directly. It sees a Page, which composes
// small capabilities:
//
//   - Navigator: go to a URL, read the URL and title, wait for the navigation
//     a trigger causes
//   - Evaluator: run a script in the page and decode its JSON result
//   - Interactor: click, type, select options and toggle checkboxes by CSS
//     selector
//   - Screenshotter: capture the page or one element
//   - Downloads: report whether a download began
//
// Actions ask for the narrowest of these they need, so tests can hand them
// the scripted page from browsertest.
//
// # Drivers
//
// Launch starts Chromium through playwright-go and is the default.
// LaunchChromedp drives Chrome over the DevTools protocol with chromedp.
// Both honor Options for headless mode, viewport and timeouts.
//
// # Scripts
//
// Scripts are plain expressions. Call builds an invocation of a function
// source with JSON-encoded arguments so the same script text runs on either
// driver:
//
//	script := browser.Call(`(limit) => document.links.length > limit`, 10)
//	var many bool
//	err := page.Evaluate(ctx, script, &many)
package browser
