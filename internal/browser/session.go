package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/config"
)

// SessionError reports a failure of the browser itself rather than of
// the page being driven. Workflow attempts that hit one are retried
// with a fresh session.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("browser session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Session is one dedicated Chrome instance with its own profile
// directory. Sessions are never pooled or shared: each workflow
// attempt acquires a fresh one and releases it on every exit path.
type Session struct {
	id          string
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	userDataDir string
	logger      *logrus.Logger
	released    bool
}

// Acquire starts a new Chrome instance and verifies it is usable.
// Callers must Release the session when done, normally via defer.
func Acquire(cfg config.BrowserConfig, logger *logrus.Logger) (*Session, error) {
	userDataDir, err := os.MkdirTemp(cfg.UserDataDir, "registry-session-")
	if err != nil {
		return nil, &SessionError{Op: "acquire", Err: fmt.Errorf("create profile dir: %w", err)}
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserDataDir(userDataDir),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-dev-tools", true),
		chromedp.WindowSize(1920, 1080),
	}
	if cfg.Headless {
		opts = append(opts,
			chromedp.Headless,
			chromedp.NoSandbox,
			chromedp.DisableGPU,
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-web-security", true),
			chromedp.Flag("no-zygote", true),
		)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	if cfg.SessionTimeout > 0 {
		ctx, ctxCancel = context.WithTimeout(ctx, cfg.SessionTimeout)
	}

	s := &Session{
		id:          fmt.Sprintf("session-%d", time.Now().UnixNano()),
		ctx:         ctx,
		cancel:      ctxCancel,
		allocCancel: allocCancel,
		userDataDir: userDataDir,
		logger:      logger,
	}

	// Health check: a session that cannot reach about:blank is dead on
	// arrival and must not be handed to a workflow.
	checkCtx, checkCancel := context.WithTimeout(ctx, 15*time.Second)
	defer checkCancel()
	if err := chromedp.Run(checkCtx, chromedp.Navigate("about:blank")); err != nil {
		s.Release()
		return nil, &SessionError{Op: "acquire", Err: fmt.Errorf("health check: %w", err)}
	}

	logger.WithField("session_id", s.id).Debug("Browser session acquired")
	return s, nil
}

// Release shuts the browser down and removes its profile directory.
// It is idempotent so it can sit in a defer next to explicit calls.
func (s *Session) Release() {
	if s.released {
		return
	}
	s.released = true
	s.cancel()
	s.allocCancel()
	if s.userDataDir != "" {
		if err := os.RemoveAll(s.userDataDir); err != nil {
			s.logger.WithError(err).WithField("session_id", s.id).Warn("Failed to remove session profile dir")
		}
	}
	s.logger.WithField("session_id", s.id).Debug("Browser session released")
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Navigate loads a URL in the session's tab.
func (s *Session) Navigate(ctx context.Context, url string) error {
	runCtx, done := s.run(ctx)
	defer done()
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return &SessionError{Op: "navigate", Err: err}
	}
	return nil
}

// SetCookie stores a cookie for the given URL's origin.
func (s *Session) SetCookie(ctx context.Context, name, value, rawURL string) error {
	action := chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookie(name, value).
			WithURL(rawURL).
			WithPath("/").
			WithSameSite(network.CookieSameSiteLax).
			Do(ctx)
	})
	runCtx, done := s.run(ctx)
	defer done()
	if err := chromedp.Run(runCtx, action); err != nil {
		return &SessionError{Op: "set cookie", Err: err}
	}
	return nil
}

// Location returns the current page URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	runCtx, done := s.run(ctx)
	defer done()
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", &SessionError{Op: "location", Err: err}
	}
	return url, nil
}

// HTML returns the serialized current document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	runCtx, done := s.run(ctx)
	defer done()
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", &SessionError{Op: "html", Err: err}
	}
	return html, nil
}

// ClickFirst waits for the locator and clicks its first match.
func (s *Session) ClickFirst(ctx context.Context, loc Locator) error {
	nodes, err := s.find(ctx, loc)
	if err != nil {
		return err
	}
	runCtx, done := s.run(ctx)
	defer done()
	if err := chromedp.Run(runCtx, chromedp.MouseClickNode(nodes[0])); err != nil {
		return &SessionError{Op: "click", Err: err}
	}
	return nil
}

// FillFirst waits for the locator and types text into its first match.
func (s *Session) FillFirst(ctx context.Context, loc Locator, text string) error {
	nodes, err := s.find(ctx, loc)
	if err != nil {
		return err
	}
	return s.sendKeys(ctx, nodes[0], text)
}

// FillAll waits for the locator and types text into every match. The
// portal's checkout forms repeat the email input, all copies must agree.
func (s *Session) FillAll(ctx context.Context, loc Locator, text string) error {
	nodes, err := s.find(ctx, loc)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if err := s.sendKeys(ctx, n, text); err != nil {
			return err
		}
	}
	return nil
}

// PressEnter waits for the locator and sends the Enter key to its
// first match.
func (s *Session) PressEnter(ctx context.Context, loc Locator) error {
	nodes, err := s.find(ctx, loc)
	if err != nil {
		return err
	}
	return s.sendKeys(ctx, nodes[0], kb.Enter)
}

// Exists polls for the locator and reports whether it appeared before
// the timeout. Absence is a normal answer here, not an error.
func (s *Session) Exists(ctx context.Context, loc Locator) (bool, error) {
	_, err := s.find(ctx, loc)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TextAll waits for the locator and returns the text of every match.
func (s *Session) TextAll(ctx context.Context, loc Locator) ([]string, error) {
	nodes, err := s.find(ctx, loc)
	if err != nil {
		return nil, err
	}
	runCtx, done := s.run(ctx)
	defer done()
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		var t string
		if err := chromedp.Run(runCtx,
			chromedp.Text([]cdp.NodeID{n.NodeID}, &t, chromedp.ByNodeID)); err != nil {
			return nil, &SessionError{Op: "text", Err: err}
		}
		texts = append(texts, t)
	}
	return texts, nil
}

// find polls the page for the locator until at least one node matches
// or the locator's timeout runs out.
func (s *Session) find(ctx context.Context, loc Locator) ([]*cdp.Node, error) {
	timeout := loc.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := loc.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := time.Now()
	deadline := start.Add(timeout)
	for {
		// A dead session is a browser failure, not a missing element.
		if err := s.ctx.Err(); err != nil {
			return nil, &SessionError{Op: "find", Err: err}
		}

		var nodes []*cdp.Node
		runCtx, done := s.run(ctx)
		pollCtx, pollCancel := context.WithTimeout(runCtx, interval)
		err := chromedp.Run(pollCtx,
			chromedp.Nodes(loc.Expr, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
		pollCancel()
		done()
		if err != nil && ctx.Err() != nil {
			return nil, &SessionError{Op: "find", Err: ctx.Err()}
		}
		if err == nil && len(nodes) > 0 {
			return nodes, nil
		}
		if time.Now().After(deadline) {
			return nil, &NotFoundError{Expr: loc.Expr, Elapsed: time.Since(start)}
		}
		select {
		case <-ctx.Done():
			return nil, &SessionError{Op: "find", Err: ctx.Err()}
		case <-time.After(interval):
		}
	}
}

func (s *Session) sendKeys(ctx context.Context, node *cdp.Node, text string) error {
	runCtx, done := s.run(ctx)
	defer done()
	err := chromedp.Run(runCtx,
		chromedp.SendKeys([]cdp.NodeID{node.NodeID}, text, chromedp.ByNodeID))
	if err != nil {
		return &SessionError{Op: "send keys", Err: err}
	}
	return nil
}

// run ties the caller's deadline to the session's chromedp context.
// The returned release func must be called once the operation finishes
// so the cancellation watcher does not outlive it.
func (s *Session) run(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return s.ctx, func() {}
	}
	merged, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
