package marketplace

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// BrowserFetcher renders a page in headless Chrome. It is the fallback for
// results pages that refuse plain HTTP clients.
type BrowserFetcher struct {
	execPath  string
	userAgent string
	settle    time.Duration
}

// NewBrowserFetcher creates a BrowserFetcher. execPath may be empty to let
// chromedp locate Chrome.
func NewBrowserFetcher(execPath, userAgent string) *BrowserFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &BrowserFetcher{
		execPath:  execPath,
		userAgent: userAgent,
		settle:    2 * time.Second,
	}
}

// Name implements PageFetcher.
func (b *BrowserFetcher) Name() string { return "chromedp" }

// Fetch implements PageFetcher. A fresh browser is started per call and torn
// down when ctx ends.
func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.userAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, eris.Wrap(err, "marketplace: render page")
	}
	if blocked, kind := DetectBlock(&okResponse, []byte(html)); blocked {
		return nil, eris.Wrapf(ErrBlocked, "%s", kind)
	}
	return []byte(html), nil
}

// okResponse stands in for the HTTP response a rendered page lacks.
var okResponse = http.Response{StatusCode: http.StatusOK}
