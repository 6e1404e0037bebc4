package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"fiverr-scraper/utils"
)

// Browser fetches fully rendered pages through headless Chrome. It exists
// for pages the relay cannot render; the Chrome process is started lazily
// on first fetch and reused afterwards.
type Browser struct {
	execPath string
	timeout  time.Duration
	logger   *utils.Logger

	once        sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewBrowser prepares a headless browser fetcher. When execPath is empty
// the binary is discovered from CHROME_BIN and well-known locations.
func NewBrowser(execPath string, timeout time.Duration, logger *utils.Logger) *Browser {
	return &Browser{execPath: execPath, timeout: timeout, logger: logger}
}

func (b *Browser) init() {
	bin := b.execPath
	if bin == "" {
		bin = findChromeBinary()
	}
	b.logger.Info("[browser] Using browser binary: %s", bin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	b.allocCtx = silentCtx
	b.allocCancel = func() {
		cancelSilent()
		cancelAlloc()
	}
}

// Fetch navigates to the URL in a fresh tab and returns the rendered HTML.
func (b *Browser) Fetch(ctx context.Context, url string) (string, error) {
	b.once.Do(b.init)

	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()

	// Propagate caller cancellation into the tab.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("browser render: %w", err)
	}
	return html, nil
}

// Close shuts down the Chrome process.
func (b *Browser) Close() {
	if b.allocCancel != nil {
		b.allocCancel()
	}
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
