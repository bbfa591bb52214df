// Package browser owns the automated Chrome session used to render
// tracker pages. It exposes navigate-and-wait as its only operation.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ErrNavigationTimeout means the ready selector never appeared within
// the configured wait. The caller decides whether to abort the run.
var ErrNavigationTimeout = errors.New("timed out waiting for page to become ready")

// Options configures the Chrome process.
type Options struct {
	Headless bool
}

// Session is a live Chrome session. It is not safe for concurrent use;
// navigation against a single browser process is inherently serialized.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	closed      bool
}

// Open starts a Chrome process and returns the session. The caller
// must Close the session, on failure paths included.
func Open(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("start-maximized", true))
	if opts.Headless {
		allocOpts = append(allocOpts,
			chromedp.Flag("headless", true),
			chromedp.DisableGPU,
			chromedp.WindowSize(1920, 1080),
		)
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	taskCtx, cancel := chromedp.NewContext(allocCtx)

	// Run a no-op task so the browser starts now and Open fails fast
	// when Chrome cannot be launched.
	if err := chromedp.Run(taskCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &Session{ctx: taskCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

// Navigate loads url and blocks until readySelector is present in the
// DOM or timeout elapses, then returns the rendered document HTML.
// A missed deadline surfaces as ErrNavigationTimeout; there is no retry.
func (s *Session) Navigate(url, readySelector string, timeout time.Duration) (string, error) {
	navCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(readySelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: selector %q after %s", ErrNavigationTimeout, readySelector, timeout)
		}
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	return html, nil
}

// Close releases the Chrome process. It is idempotent and safe to call
// after failed navigations.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	// Graceful shutdown first so Chrome can exit cleanly.
	_ = chromedp.Cancel(s.ctx)
	s.cancel()
	s.allocCancel()
}
