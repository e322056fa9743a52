package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// Letter paper in inches, with half-inch margins
const (
	paperWidth  = 8.5
	paperHeight = 11.0
	margin      = 0.5
)

// ChromePDF converts HTML to PDF through the Chrome DevTools Protocol. It
// launches a local headless browser unless RemoteURL is set.
type ChromePDF struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

// NewChromePDF creates a converter. The browser starts lazily on the first
// Convert call.
func NewChromePDF(remoteURL string, timeout time.Duration, logger *zap.Logger) *ChromePDF {
	if timeout <= 0 {
		timeout = defaultChromeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &ChromePDF{timeout: timeout, logger: logger.Named("chromedp")}
	if remoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), remoteURL)
		return c
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return c
}

// Convert prints html to a Letter-sized PDF
func (c *ChromePDF) Convert(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, errors.New("printing: html is empty")
	}

	browserCtx, cancelBrowser := chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			c.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	// chromedp derives from allocCtx, so the caller's deadline is joined by hand.
	timeoutCtx, cancel := context.WithTimeout(browserCtx, c.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("printing: pdf timed out after %v: %w", c.timeout, err)
		}
		return nil, fmt.Errorf("printing: chromedp: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("printing: generated pdf is empty")
	}
	return pdf, nil
}

// Close shuts the browser allocator down
func (c *ChromePDF) Close() {
	c.closeOnce.Do(c.allocCancel)
}
