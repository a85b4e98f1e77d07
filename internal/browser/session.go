// Package browser drives the demo application in Chrome over the DevTools
// protocol. A Session locates and acts on elements, switches views, draws
// the spotlight overlay and speaks through the page's speechSynthesis.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"tracetour/internal/config"
	"tracetour/internal/logging"
	"tracetour/internal/page"
)

// startupTimeout bounds loading the application on Open.
const startupTimeout = 30 * time.Second

// ErrSessionClosed is returned by calls made after Close.
var ErrSessionClosed = errors.New("browser session closed")

// Session is a connection to one browser tab showing the demo application.
type Session struct {
	cfg config.BrowserConfig
	ctx context.Context

	mu      sync.Mutex
	cancels []context.CancelFunc
	closed  bool

	bindingMu sync.Mutex
	onBinding func(payload string)
}

// Open starts (or attaches to) a browser and loads the application.
func Open(ctx context.Context, cfg config.BrowserConfig) (*Session, error) {
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = config.DefaultActionTimeout
	}
	if cfg.NavigateScript == "" {
		cfg.NavigateScript = config.DefaultNavigateScript
	}

	s := &Session{cfg: cfg}

	var allocCtx context.Context
	var cancel context.CancelFunc
	if cfg.RemoteURL != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
		)
		if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
			opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
		}
		if cfg.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
		}
		allocCtx, cancel = chromedp.NewExecAllocator(ctx, opts...)
	}
	s.cancels = append(s.cancels, cancel)

	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(cdpLogf(logging.Debug)),
		chromedp.WithErrorf(cdpLogf(logging.Warn)),
	)
	s.cancels = append(s.cancels, cancel)
	s.ctx = tabCtx

	chromedp.ListenTarget(tabCtx, func(ev any) {
		if ev, ok := ev.(*runtime.EventBindingCalled); ok && ev.Name == speechBinding {
			s.bindingMu.Lock()
			fn := s.onBinding
			s.bindingMu.Unlock()
			if fn != nil {
				go fn(ev.Payload)
			}
		}
	})

	// The first Run owns the browser; it must not use a short-lived context.
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	if err := chromedp.Run(tabCtx, runtime.AddBinding(speechBinding)); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to install speech binding: %w", err)
	}

	loadCtx, cancelLoad := context.WithTimeout(tabCtx, startupTimeout)
	defer cancelLoad()
	if err := chromedp.Run(loadCtx,
		chromedp.Navigate(cfg.AppURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load %s: %w", cfg.AppURL, err)
	}

	logging.Info("browser session opened", "app_url", cfg.AppURL, "remote", cfg.RemoteURL != "")
	return s, nil
}

func cdpLogf(log func(string, ...any)) func(string, ...any) {
	return func(format string, args ...any) {
		log("cdp", "message", fmt.Sprintf(format, args...))
	}
}

// Close disconnects from the browser, closing it if Open started it.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	s.cancels = nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// eval runs a JavaScript expression with the action timeout and decodes its
// result into out (which may be nil).
func (s *Session) eval(expr string, out any) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.ActionTimeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Evaluate(expr, out))
}

// evalOK runs an expression that returns a boolean and logs failures.
func (s *Session) evalOK(op, selector, expr string) bool {
	var ok bool
	if err := s.eval(expr, &ok); err != nil {
		if !errors.Is(err, ErrSessionClosed) {
			logging.Debug("browser action failed", "op", op, "selector", selector, "error", err)
		}
		return false
	}
	return ok
}

func (s *Session) setBindingHandler(fn func(payload string)) {
	s.bindingMu.Lock()
	defer s.bindingMu.Unlock()
	s.onBinding = fn
}

// element is a selector resolved in the live page. It is re-queried on
// every use so it follows re-renders.
type element struct {
	s        *Session
	selector string
}

func (e *element) Selector() string { return e.selector }

func (e *element) Bounds() (page.Rect, bool) {
	var res boundsResult
	if err := e.s.eval(boundsExpr(e.selector), &res); err != nil || !res.Found {
		return page.Rect{}, false
	}
	return res.rect(), true
}

// Locate implements page.Locator.
func (s *Session) Locate(selector string) (page.Element, bool) {
	if !s.evalOK("locate", selector, existsExpr(selector)) {
		return nil, false
	}
	return &element{s: s, selector: selector}, true
}

// Click implements page.Locator.
func (s *Session) Click(el page.Element) {
	if el == nil {
		return
	}
	s.evalOK("click", el.Selector(), clickExpr(el.Selector()))
}

// FillValue implements page.Locator.
func (s *Session) FillValue(el page.Element, value string) {
	if el == nil {
		return
	}
	s.evalOK("fill", el.Selector(), fillExpr(el.Selector(), value))
}

// ScrollIntoView implements page.Locator.
func (s *Session) ScrollIntoView(el page.Element) {
	if el == nil {
		return
	}
	s.evalOK("scroll", el.Selector(), scrollExpr(el.Selector()))
}

// Navigate implements page.Navigator using the configured navigate script.
func (s *Session) Navigate(view string) {
	if err := s.eval(navigateExpr(s.cfg.NavigateScript, view), nil); err != nil && !errors.Is(err, ErrSessionClosed) {
		logging.Debug("browser navigate failed", "view", view, "error", err)
	}
}

// Show implements spotlight.Surface with a fixed overlay in the page.
func (s *Session) Show(r page.Rect) {
	s.evalOK("spotlight", "", showOverlayExpr(r))
}

// Hide implements spotlight.Surface.
func (s *Session) Hide() {
	s.evalOK("spotlight", "", hideOverlayExpr())
}
