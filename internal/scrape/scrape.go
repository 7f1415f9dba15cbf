// Package scrape follows supreme court verdict pages to the appellate
// verdict they review. The supreme court website links each verdict to
// the appellate one, either in a hidden "#verdict-url" element or in an
// anchor carrying a data-solution attribute.
package scrape

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize  = 10
	defaultBatchDelay = 200 * time.Millisecond
	defaultTimeout    = 30 * time.Second
	progressEvery     = 50

	// DefaultUserAgent mimics a desktop browser; the court site serves a
	// stripped page to unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// appellateHost is the marker that identifies a link to the appellate court.
const appellateHost = "landsrettur"

// Options configures a Scraper. Zero values fall back to defaults.
type Options struct {
	BatchSize          int
	BatchDelay         time.Duration
	Timeout            time.Duration
	UserAgent          string
	InsecureSkipVerify bool
}

// Scraper fetches verdict pages and extracts appeal links.
type Scraper struct {
	client    *http.Client
	batchSize int
	delay     time.Duration
	userAgent string
}

// NewScraper creates a scraper.
func NewScraper(opts Options) *Scraper {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	} else if opts.BatchDelay == 0 {
		opts.BatchDelay = defaultBatchDelay
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Scraper{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		batchSize: opts.BatchSize,
		delay:     opts.BatchDelay,
		userAgent: opts.UserAgent,
	}
}

// FetchLink fetches one verdict page and returns the appellate verdict
// URL it links to, or "" when the page has none.
func (s *Scraper) FetchLink(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	return ExtractLink(resp.Body)
}

// FetchLinks fetches the given pages in batches of concurrent requests and
// returns page URL -> appellate URL. Pages that fail or carry no link map
// to "". Pages not reached before ctx is cancelled are left out.
func (s *Scraper) FetchLinks(ctx context.Context, urls []string) map[string]string {
	links := make(map[string]string, len(urls))

	for start := 0; start < len(urls); start += s.batchSize {
		if ctx.Err() != nil {
			log.Printf("Scraping stopped after %d/%d pages: %v", start, len(urls), ctx.Err())
			break
		}
		end := min(start+s.batchSize, len(urls))
		batch := urls[start:end]

		results := make([]string, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.batchSize)
		for i, u := range batch {
			g.Go(func() error {
				link, err := s.FetchLink(gctx, u)
				if err != nil {
					log.Printf("Error fetching %s: %v", u, err)
					return nil
				}
				results[i] = link
				return nil
			})
		}
		_ = g.Wait()
		if ctx.Err() != nil {
			log.Printf("Scraping stopped after %d/%d pages: %v", start, len(urls), ctx.Err())
			break
		}

		for i, u := range batch {
			links[u] = results[i]
		}

		if end%progressEvery == 0 || end >= len(urls) {
			log.Printf("  Fetched %d/%d...", end, len(urls))
		}

		if end < len(urls) && s.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.delay):
			}
		}
	}

	return links
}

// ExtractLink parses a verdict page and returns the appellate verdict URL
// it references, or "".
func ExtractLink(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing verdict page: %w", err)
	}

	if span := doc.Find("#verdict-url").First(); span.Length() > 0 {
		link := strings.TrimSpace(span.Text())
		if isAppellate(link) {
			return link, nil
		}
	}

	var link string
	doc.Find("a[data-solution]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("data-solution", "")
		if href == "" {
			href = a.AttrOr("href", "")
		}
		if isAppellate(href) {
			link = href
			return false
		}
		return true
	})
	return link, nil
}

func isAppellate(link string) bool {
	return link != "" && strings.Contains(strings.ToLower(link), appellateHost)
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%d %s", e.code, http.StatusText(e.code))
}
