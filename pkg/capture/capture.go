// Package capture drives a pooled headless browser to render tracked pages
// and produce the raw inputs for extraction: a viewport screenshot and the
// visible page text. Each capture runs in its own stealth tab, bounded by the
// pool size, and closes the tab on every exit path.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Error wraps a failure to render a page. It carries the URL for log context
// and unwraps to the underlying cause. A capture error is transient from the
// scheduler's point of view, the item is rescheduled for the next cycle.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("capture %s: %v", e.URL, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Request describes a single page capture
type Request struct {
	URL          string
	Selector     string        // optional CSS selector to scroll into view before the shot
	ItemID       int64         // used for the persisted screenshot file name
	Timeout      time.Duration // hard deadline for navigation and rendering
	SmartScroll  bool          // nudge the page down to trigger lazy-loaded content
	ScrollPixels int
	TextLength   int // cap on captured visible text, 0 disables text capture
}

// Snapshot is the result of a successful capture
type Snapshot struct {
	Screenshot     []byte // PNG viewport screenshot
	ScreenshotPath string // on-disk copy, empty if persistence failed
	Text           string // visible page text, truncated to Request.TextLength
}

// Capture renders the page and returns a screenshot with the visible text.
// It blocks until a pool slot is available or the context is canceled.
func (p *Pool) Capture(ctx context.Context, req Request) (*Snapshot, error) {
	if req.Timeout <= 0 {
		req.Timeout = 90 * time.Second
	}

	if err := p.acquire(ctx); err != nil {
		return nil, &Error{URL: req.URL, Err: fmt.Errorf("acquire session: %w", err)}
	}
	defer p.release()

	browser, err := p.browserHandle()
	if err != nil {
		return nil, &Error{URL: req.URL, Err: err}
	}

	snap, err := p.capturePage(ctx, browser, req)
	if err != nil {
		p.invalidate(err)
		return nil, &Error{URL: req.URL, Err: err}
	}
	return snap, nil
}

func (p *Pool) capturePage(ctx context.Context, browser *rod.Browser, req Request) (*Snapshot, error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if e := page.Close(); e != nil {
			lgr.Printf("[WARN] page close failed for %s: %v", req.URL, e)
		}
	}()

	capCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()
	page = page.Context(capCtx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: 1920, Height: 1080, DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	// a short settle lets cookie banners and late scripts finish,
	// Escape dismisses the common modal overlays
	time.Sleep(time.Second)
	if err := page.Keyboard.Press(input.Escape); err != nil {
		lgr.Printf("[DEBUG] escape press failed for %s: %v", req.URL, err)
	}

	if req.Selector != "" {
		if err := p.scrollToSelector(page, req.Selector); err != nil {
			lgr.Printf("[WARN] selector %q not found on %s: %v", req.Selector, req.URL, err)
		}
	} else if req.SmartScroll && req.ScrollPixels > 0 {
		if _, err := page.Eval(`(px) => window.scrollBy(0, px)`, req.ScrollPixels); err != nil {
			lgr.Printf("[DEBUG] smart scroll failed for %s: %v", req.URL, err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	snap := &Snapshot{}

	if req.TextLength > 0 {
		res, err := page.Eval(`() => document.body ? document.body.innerText : ""`)
		if err != nil {
			lgr.Printf("[WARN] text capture failed for %s: %v", req.URL, err)
		} else {
			snap.Text = truncate(res.Value.Str(), req.TextLength)
		}
	}

	shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	snap.Screenshot = shot
	snap.ScreenshotPath = p.persistScreenshot(req.ItemID, shot)

	return snap, nil
}

// scrollToSelector brings the priced element into the viewport so the
// screenshot includes it even on long pages
func (p *Pool) scrollToSelector(page *rod.Page, selector string) error {
	el, err := page.Timeout(5 * time.Second).Element(selector)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return err
	}
	time.Sleep(500 * time.Millisecond)
	return nil
}

// persistScreenshot writes the latest shot for an item, overwriting the
// previous one. Failure to persist is logged but never fails the capture.
func (p *Pool) persistScreenshot(itemID int64, data []byte) string {
	if itemID == 0 {
		return ""
	}
	if err := os.MkdirAll(p.cfg.ScreenshotDir, 0o750); err != nil {
		lgr.Printf("[WARN] can't create screenshot dir %s: %v", p.cfg.ScreenshotDir, err)
		return ""
	}
	path := filepath.Join(p.cfg.ScreenshotDir, fmt.Sprintf("item_%d.png", itemID))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		lgr.Printf("[WARN] can't save screenshot %s: %v", path, err)
		return ""
	}
	return path
}

// truncate caps text at max characters, never splitting a multi-byte rune
func truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
