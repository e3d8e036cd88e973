package crossref

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sumocli/internal/render"
)

// Fetch renders the second source's ranking page. The session must land on
// url (query strings added by the site are accepted) and show rank cells
// within timeout.
func Fetch(ctx context.Context, session render.Session, url string, timeout time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "crossref.Fetch")
	defer span.End()

	if err := session.Navigate(ctx, url); err != nil {
		return "", fmt.Errorf("failed to open cross-source page: %w", err)
	}
	loc, err := session.Location(ctx)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(loc, url) {
		return "", fmt.Errorf("cross-source page redirected to %s", loc)
	}
	if err := session.WaitFor(ctx, rankCell, timeout); err != nil {
		return "", fmt.Errorf("cross-source ranking table missing: %w", err)
	}
	return session.HTML(ctx)
}
