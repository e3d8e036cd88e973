// Package rendertest provides an in-memory render.Session serving fixture HTML.
package rendertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sumocli/internal/render"
)

// Session is a scripted render.Session. Pages are addressed by key: a
// navigation uses the URL as key, clicks and selects move between keys.
type Session struct {
	mu sync.Mutex

	// Pages maps a page key to its HTML
	Pages map[string]string
	// Redirects maps a requested URL to the location reported after loading it
	Redirects map[string]string
	// NavErrors holds how many navigations to a URL fail before one succeeds
	NavErrors map[string]int
	// Options maps a select value to the page key it loads
	Options map[string]string
	// Next maps a page key to the key shown after a click
	Next map[string]string
	// Lag holds how many HTML reads after arriving at a key still return the previous page
	Lag map[string]int

	current  string
	previous string
	lag      int

	Navigated []string
	Clicks    int
	Closed    bool
}

// NewSession returns a session serving pages
func NewSession(pages map[string]string) *Session {
	return &Session{
		Pages:     pages,
		Redirects: map[string]string{},
		NavErrors: map[string]int{},
		Options:   map[string]string{},
		Next:      map[string]string{},
		Lag:       map[string]int{},
	}
}

func (s *Session) moveTo(key string) {
	s.previous = s.current
	s.current = key
	s.lag = s.Lag[key]
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Navigated = append(s.Navigated, url)
	if n := s.NavErrors[url]; n > 0 {
		s.NavErrors[url] = n - 1
		return fmt.Errorf("navigate %s: connection reset", url)
	}
	if target, ok := s.Redirects[url]; ok {
		s.moveTo(target)
		return nil
	}
	s.moveTo(url)
	return nil
}

func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	html, ok := s.Pages[s.current]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", render.ErrWaitTimeout, selector)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", render.ErrWaitTimeout, selector)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Clicks++
	next, ok := s.Next[s.current]
	if !ok {
		return fmt.Errorf("click %s: no node", selector)
	}
	s.moveTo(next)
	return nil
}

func (s *Session) SelectValue(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.Options[value]
	if !ok {
		return fmt.Errorf("select %s: no option %s", selector, value)
	}
	s.moveTo(key)
	return nil
}

func (s *Session) Location(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.current
	if s.lag > 0 {
		s.lag--
		key = s.previous
	}
	html, ok := s.Pages[key]
	if !ok {
		return "", errors.New("no document loaded")
	}
	return html, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Renderer hands out a fixed session and counts acquisitions
type Renderer struct {
	Session *Session
	OpenErr error
	Opened  int
}

func (r *Renderer) Open(ctx context.Context) (render.Session, error) {
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	r.Opened++
	r.Session.Closed = false
	return r.Session, nil
}
