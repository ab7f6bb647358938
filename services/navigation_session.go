package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/sirupsen/logrus"
)

// NavigationSession is the narrow set of browser operations the listing navigator needs.
// Every blocking call honours ctx and the session's own navigation timeout.
type NavigationSession interface {
	Open(ctx context.Context, url string) error
	SelectOption(ctx context.Context, selector, value string) error
	SelectOptionAndWait(ctx context.Context, selector, value string) error
	ClearValue(ctx context.Context, selector string) error
	CopyValue(ctx context.Context, fromSelector, toSelector string) error
	SubmitAndWait(ctx context.Context, selector string) error
	HasElement(ctx context.Context, selector string) (bool, error)
	RenderedHTML(ctx context.Context) (string, error)
	Close() error
}

// SessionFactory acquires a fresh session for one run
type SessionFactory func(ctx context.Context) (NavigationSession, error)

// ChromeSession drives a headless Chrome instance through chromedp
type ChromeSession struct {
	browserCtx  context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	closeOnce   sync.Once
	logger      *logrus.Entry
}

// NewChromeSessionFactory returns a factory that launches one browser per session
func NewChromeSessionFactory(config shared.BrowserConfig) SessionFactory {
	return func(ctx context.Context) (NavigationSession, error) {
		return NewChromeSession(ctx, config)
	}
}

// NewChromeSession launches Chrome and waits for it to be ready, bounded by the
// navigation timeout
func NewChromeSession(ctx context.Context, config shared.BrowserConfig) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("ignore-certificate-errors", config.IgnoreCertificateErrors),
		chromedp.UserAgent(shared.BrowserUserAgent()),
	)
	if config.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(config.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx)

	session := &ChromeSession{
		browserCtx:  browserCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		timeout:     config.NavigationTimeout,
		logger: logrus.WithFields(logrus.Fields{
			"component": "ChromeSession",
		}),
	}

	// The first Run starts the browser; it must use the browser context itself
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(browserCtx)
	}()

	select {
	case err := <-started:
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-time.After(config.NavigationTimeout):
		session.Close()
		return nil, fmt.Errorf("browser did not start within %v", config.NavigationTimeout)
	case <-ctx.Done():
		session.Close()
		return nil, ctx.Err()
	}

	session.logger.Debug("Browser session started")
	return session, nil
}

// run executes actions on the tab with the navigation timeout, cancelled early if ctx ends
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// runAndWait executes an action that triggers a page navigation and waits for it to load
func (s *ChromeSession) runAndWait(ctx context.Context, action chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	_, err := chromedp.RunResponse(runCtx, action)
	return err
}

func (s *ChromeSession) Open(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// SelectOption sets a select's value and fires the change events a user selection would
func (s *ChromeSession) SelectOption(ctx context.Context, selector, value string) error {
	return s.run(ctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		selectOptionAction(selector, value),
	)
}

func (s *ChromeSession) SelectOptionAndWait(ctx context.Context, selector, value string) error {
	if err := s.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return err
	}
	return s.runAndWait(ctx, selectOptionAction(selector, value))
}

func (s *ChromeSession) ClearValue(ctx context.Context, selector string) error {
	return s.run(ctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, "", chromedp.ByQuery),
	)
}

func (s *ChromeSession) CopyValue(ctx context.Context, fromSelector, toSelector string) error {
	var value string
	return s.run(ctx,
		chromedp.Value(fromSelector, &value, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.SetValue(toSelector, value, chromedp.ByQuery).Do(ctx)
		}),
	)
}

func (s *ChromeSession) SubmitAndWait(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return err
	}
	return s.runAndWait(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// HasElement checks the current document without waiting for the element to appear
func (s *ChromeSession) HasElement(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

func (s *ChromeSession) RenderedHTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts the tab and the browser process. Safe to call more than once.
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancelTab()
		s.cancelAlloc()
		s.logger.Debug("Browser session closed")
	})
	return nil
}

func selectOptionAction(selector, value string) chromedp.Action {
	quotedSelector, _ := json.Marshal(selector)
	quotedValue, _ := json.Marshal(value)
	script := fmt.Sprintf(`(function() {
		const el = document.querySelector(%s);
		if (!el) { return false; }
		el.value = %s;
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, quotedSelector, quotedValue)

	return chromedp.ActionFunc(func(ctx context.Context) error {
		var found bool
		if err := chromedp.Evaluate(script, &found).Do(ctx); err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("select %s not found", selector)
		}
		return nil
	})
}
