package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultBrowserTimeout bounds a whole headless render.
const DefaultBrowserTimeout = 20 * time.Second

// Render loads url in headless Chrome and returns the HTML after scripts ran.
// Course catalogs that build their result list client-side only show cards
// here. Rendering waits up to half the timeout for waitSelector (any card) and
// captures the page either way, so an empty catalog is not an error.
// Chrome or Chromium must be installed.
func Render(ctx context.Context, url, waitSelector string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	if waitSelector == "" {
		waitSelector = "body"
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(DefaultUserAgent),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	start := time.Now()
	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			waitCtx, cancel := context.WithTimeout(ctx, timeout/2)
			defer cancel()
			_ = chromedp.WaitVisible(waitSelector, chromedp.ByQuery).Do(waitCtx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "headless render failed", Cause: err}
	}

	slog.Debug("rendered catalog page", "url", url, "bytes", len(html), "duration", time.Since(start))
	return html, nil
}
