// Package render drives the headless browser used to load league pages.
//
// A Renderer opens one Session at a time. The Session is a thin, blocking
// wrapper over a single browser tab: it navigates, waits for selectors,
// clicks, changes select options and hands back the rendered document so
// parsing can happen with goquery outside of the browser.
package render

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout is returned when a selector does not appear in time
var ErrWaitTimeout = errors.New("wait timed out")

// Session is one open browser tab
type Session interface {
	// Navigate loads url and blocks until the document has loaded
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until selector matches a node or timeout elapses
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// Click clicks the first node matching selector. Selector may be CSS or XPath.
	Click(ctx context.Context, selector string) error

	// SelectValue sets the value of a <select> and fires its change event
	SelectValue(ctx context.Context, selector, value string) error

	// Location returns the URL currently shown by the tab
	Location(ctx context.Context) (string, error)

	// HTML returns the outer HTML of the rendered document
	HTML(ctx context.Context) (string, error)

	// Close releases the tab and the browser behind it
	Close() error
}

// Renderer acquires sessions
type Renderer interface {
	Open(ctx context.Context) (Session, error)
}

// IsWaitTimeout reports whether err came from an expired wait
func IsWaitTimeout(err error) bool {
	return errors.Is(err, ErrWaitTimeout)
}
