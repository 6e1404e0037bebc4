package fetch

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"fiverr-scraper/jsontree"
	"fiverr-scraper/props"
	"fiverr-scraper/utils"
)

// Mode selects how pages are fetched.
type Mode string

const (
	// ModeRelay routes requests through a ScraperAPI-style relay endpoint.
	ModeRelay Mode = "relay"
	// ModeDirect requests marketplace pages straight from the source.
	ModeDirect Mode = "direct"
	// ModeBrowser renders pages in headless Chrome before extraction.
	ModeBrowser Mode = "browser"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures a Client. Zero values fall back to sane defaults.
type Options struct {
	Mode           Mode
	RelayURL       string
	APIKey         string
	Render         bool
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	ChromeBin      string
}

// Response carries one fetched page. Props is populated when embedded-state
// extraction was requested and succeeded; PropsErr records an extraction
// failure without invalidating the HTML.
type Response struct {
	Status   int
	HTML     string
	Props    jsontree.Value
	PropsErr error
}

// Client fetches marketplace pages through the configured mode, guarding
// every request with the domain allow-list and retrying transient failures
// with exponential back-off.
type Client struct {
	mode     Mode
	relayURL string
	apiKey   string
	render   bool
	http     *resty.Client
	browser  *Browser
	retry    *utils.RetryConfig
	logger   *utils.Logger
}

// NewClient builds a Client from the given options.
func NewClient(opts Options, logger *utils.Logger) *Client {
	if opts.Mode == "" {
		opts.Mode = ModeDirect
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 70 * time.Second
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 2 * time.Second
	}

	hc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", userAgent)
	if opts.Mode == ModeDirect {
		hc.SetRedirectPolicy(resty.DomainCheckRedirectPolicy("fiverr.com", "www.fiverr.com"))
	}

	var browser *Browser
	if opts.Mode == ModeBrowser {
		browser = NewBrowser(opts.ChromeBin, opts.Timeout, logger)
	}

	return &Client{
		mode:     opts.Mode,
		relayURL: opts.RelayURL,
		apiKey:   opts.APIKey,
		render:   opts.Render,
		http:     hc,
		browser:  browser,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   opts.RetryBaseDelay,
			Retryable:   Retryable,
			Logger:      logger,
		},
		logger: logger,
	}
}

// Fetch retrieves the page at rawURL. The URL must pass the domain guard;
// rejected URLs fail immediately with no request made. When extractProps is
// true the embedded page state is parsed out of the returned HTML.
func (c *Client) Fetch(ctx context.Context, rawURL string, extractProps bool) (*Response, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindDomainRejected, URL: rawURL, Err: err}
	}

	var resp *Response
	err = c.retry.Do(ctx, "fetch "+target, func() error {
		r, ferr := c.fetchOnce(ctx, target)
		if ferr != nil {
			return ferr
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if extractProps {
		tree, perr := props.Extract(resp.HTML)
		if perr != nil {
			c.logger.Warn("[fetch] no embedded state in %s: %v", target, perr)
			resp.PropsErr = perr
		} else {
			resp.Props = tree
		}
	}

	return resp, nil
}

func (c *Client) fetchOnce(ctx context.Context, target string) (*Response, error) {
	if c.mode == ModeBrowser {
		html, err := c.browser.Fetch(ctx, target)
		if err != nil {
			return nil, &Error{Kind: classify(err), URL: target, Err: err}
		}
		return &Response{Status: 200, HTML: html}, nil
	}

	req := c.http.R().SetContext(ctx)
	requestURL := target
	if c.mode == ModeRelay {
		req.SetQueryParam("api_key", c.apiKey)
		req.SetQueryParam("url", target)
		if c.render {
			req.SetQueryParam("render", "true")
		}
		requestURL = c.relayURL
	}

	res, err := req.Get(requestURL)
	if err != nil {
		return nil, &Error{Kind: classify(err), URL: target, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &Error{Kind: KindHTTPStatus, URL: target, Status: res.StatusCode()}
	}

	return &Response{Status: res.StatusCode(), HTML: res.String()}, nil
}

// Close releases the headless browser, if one was started.
func (c *Client) Close() {
	if c.browser != nil {
		c.browser.Close()
	}
}
