package capture

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-pkgz/lgr"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Pool manages a shared headless browser connection and a bounded number of
// concurrent capture sessions (tabs). The slot count is the concurrency
// ceiling for the whole pipeline: a slot is checked out for the lifetime of a
// single capture and is returned on every exit path, success or failure, so a
// failed navigation can never starve the pool.
type Pool struct {
	cfg   Config
	slots chan struct{}

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// Config configures the capture pool
type Config struct {
	// RemoteURL is the WebSocket control URL of an external Chrome
	// (browserless-style). Empty launches a local headless Chrome.
	RemoteURL string

	// Size is the number of concurrent capture sessions, default 5
	Size int

	// ScreenshotDir is where per-item screenshots are stored, default "screenshots"
	ScreenshotDir string
}

// NewPool creates a capture pool. Call Start to establish the browser
// connection; captures before Start fail with a CaptureError.
func NewPool(cfg Config) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = 5
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}

	slots := make(chan struct{}, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		slots <- struct{}{}
	}

	return &Pool{cfg: cfg, slots: slots}
}

// Size returns the pool's concurrency ceiling
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Start connects to the remote browser or launches a local one
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("capture pool is closed")
	}
	_, err := p.connectLocked()
	return err
}

// Close shuts the browser connection down and rejects further captures
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cleanupLocked()
	return nil
}

// acquire checks out a capture slot, honoring context cancellation
func (p *Pool) acquire(ctx context.Context) error {
	select {
	case <-p.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release returns a capture slot to the pool
func (p *Pool) release() {
	p.slots <- struct{}{}
}

// browserHandle returns the connected browser, reconnecting if needed
func (p *Pool) browserHandle() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("capture pool is closed")
	}
	if p.browser != nil {
		return p.browser, nil
	}

	lgr.Printf("[WARN] browser disconnected, reconnecting")
	return p.connectLocked()
}

// invalidate drops the browser handle after a connection-level failure so the
// next capture reconnects with a fresh one
func (p *Pool) invalidate(err error) {
	if !isConnectionError(err) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser == nil {
		return
	}
	lgr.Printf("[WARN] browser connection lost, resetting: %v", err)
	p.cleanupLocked()
}

func (p *Pool) connectLocked() (*rod.Browser, error) {
	wsURL := p.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		wsURL = u
		p.lnch = l
		lgr.Printf("[INFO] launched local browser at %s", wsURL)
	} else {
		lgr.Printf("[INFO] connecting to remote browser at %s", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		p.cleanupLocked()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	if err := b.IgnoreCertErrors(true); err != nil {
		lgr.Printf("[WARN] ignore cert errors failed: %v", err)
	}

	p.browser = b
	return b, nil
}

func (p *Pool) cleanupLocked() {
	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			lgr.Printf("[WARN] browser close failed: %v", err)
		}
		p.browser = nil
	}
	if p.lnch != nil {
		p.lnch.Cleanup()
		p.lnch = nil
	}
}

// isConnectionError reports whether an error indicates a dead browser
// connection rather than a page-level failure
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "browser has been closed") ||
		strings.Contains(msg, "websocket") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "use of closed network connection")
}
