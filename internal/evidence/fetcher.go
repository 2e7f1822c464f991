package evidence

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

var (
	ErrUnsupportedURL = errors.New("evidence url must be http or https")
	ErrNoTitle        = errors.New("page has no title")
)

// Preview is what a reviewer sees next to an evidence link.
type Preview struct {
	Title       string
	Description string
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, rawURL string) (Preview, error)
}

// ValidateURL accepts absolute http and https links whose host is not a
// localhost name or a non-public IP literal. Names are resolved and checked
// again when the page is fetched.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := parseHTTPURL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := checkHostLiteral(u.Hostname()); err != nil {
		return nil, err
	}
	return u, nil
}

// CollyFetcher reads the static HTML of a page. Connections to non-public
// addresses are refused.
type CollyFetcher struct {
	Timeout time.Duration

	allowPrivate bool
}

func (CollyFetcher) Name() string { return "colly" }

func (f CollyFetcher) Fetch(ctx context.Context, rawURL string) (Preview, error) {
	u, err := f.validate(rawURL)
	if err != nil {
		return Preview{}, err
	}
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Hostname()),
		colly.UserAgent(userAgent),
		colly.MaxBodySize(2*1024*1024),
	)
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	c.SetRequestTimeout(timeout)
	c.WithTransport(newTransport(f.allowPrivate))

	var out Preview
	c.OnHTML("head", func(e *colly.HTMLElement) {
		out.Title = pickNonEmpty(
			e.ChildAttr(`meta[property="og:title"]`, "content"),
			e.ChildText("title"),
		)
		out.Description = pickNonEmpty(
			e.ChildAttr(`meta[property="og:description"]`, "content"),
			e.ChildAttr(`meta[name="description"]`, "content"),
		)
	})

	var reqErr error
	c.OnError(func(_ *colly.Response, err error) {
		reqErr = err
	})

	if err := c.Visit(u.String()); err != nil {
		return Preview{}, err
	}
	c.Wait()
	if reqErr != nil {
		return Preview{}, reqErr
	}

	out = out.normalize()
	if out.Title == "" {
		return out, ErrNoTitle
	}
	return out, nil
}

func (f CollyFetcher) validate(rawURL string) (*url.URL, error) {
	if f.allowPrivate {
		return parseHTTPURL(rawURL)
	}
	return ValidateURL(rawURL)
}

func parseHTTPURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrUnsupportedURL
	}
	return u, nil
}

// HeadlessFetcher renders the page in headless Chrome, for pages that build
// their title client side.
type HeadlessFetcher struct {
	Timeout time.Duration
}

func (HeadlessFetcher) Name() string { return "chromedp" }

func (f HeadlessFetcher) Fetch(ctx context.Context, rawURL string) (Preview, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return Preview{}, err
	}
	if err := CheckHost(ctx, u.Hostname()); err != nil {
		return Preview{}, err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	reqCtx, reqCancel := context.WithTimeout(browserCtx, timeout)
	defer reqCancel()

	var out Preview
	err = chromedp.Run(reqCtx,
		chromedp.Navigate(u.String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Title(&out.Title),
		chromedp.EvaluateAsDevTools(`(document.querySelector('meta[name="description"]') || {}).content || ''`, &out.Description),
	)
	if err != nil {
		return Preview{}, fmt.Errorf("headless fetch: %w", err)
	}

	out = out.normalize()
	if out.Title == "" {
		return out, ErrNoTitle
	}
	return out, nil
}

func (p Preview) normalize() Preview {
	return Preview{
		Title:       truncate(collapseSpace(p.Title), 200),
		Description: truncate(collapseSpace(p.Description), 500),
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func pickNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
