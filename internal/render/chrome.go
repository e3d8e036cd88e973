package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

// ChromeOptions configures the chromedp backed renderer
type ChromeOptions struct {
	Headless bool
	// RequestsPerSecond paces navigations and clicks. Zero disables pacing.
	RequestsPerSecond float64
	// NavigateTimeout bounds a single page load
	NavigateTimeout time.Duration
	Logger          *slog.Logger
}

// ChromeRenderer opens chromedp sessions
type ChromeRenderer struct {
	opts ChromeOptions
}

// NewChromeRenderer creates a renderer backed by a local Chrome install
func NewChromeRenderer(opts ChromeOptions) *ChromeRenderer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 60 * time.Second
	}
	return &ChromeRenderer{opts: opts}
}

// Open starts a browser and returns a session bound to its first tab
func (r *ChromeRenderer) Open(ctx context.Context) (Session, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if r.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", true))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// first Run launches the browser
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	limit := rate.Inf
	if r.opts.RequestsPerSecond > 0 {
		limit = rate.Limit(r.opts.RequestsPerSecond)
	}

	r.opts.Logger.InfoContext(ctx, "browser_started",
		slog.Bool("headless", r.opts.Headless),
		slog.Float64("requests_per_second", r.opts.RequestsPerSecond))

	return &chromeSession{
		tab:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		limiter:     rate.NewLimiter(limit, 1),
		navTimeout:  r.opts.NavigateTimeout,
		logger:      r.opts.Logger,
	}, nil
}

type chromeSession struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	limiter     *rate.Limiter
	navTimeout  time.Duration
	logger      *slog.Logger
}

// run executes actions on the tab, bounded by timeout and cancelled with ctx
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	if err := s.run(ctx, s.navTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	s.logger.DebugContext(ctx, "page_loaded",
		slog.String("url", url),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (s *chromeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	err := s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return err
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.run(ctx, s.navTimeout, chromedp.Click(selector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) SelectValue(ctx context.Context, selector, value string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	js := fmt.Sprintf(`(function(){
		var el = document.querySelector(%q);
		if (!el) { return false; }
		el.value = %q;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, selector, value)

	var found bool
	if err := s.run(ctx, s.navTimeout, chromedp.Evaluate(js, &found)); err != nil {
		return fmt.Errorf("select %s=%s: %w", selector, value, err)
	}
	if !found {
		return fmt.Errorf("select %s: element not found", selector)
	}
	return nil
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, s.navTimeout, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return loc, nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.navTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	s.logger.Debug("browser_closed")
	return nil
}
