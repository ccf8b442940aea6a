// Package scrape pulls title and description metadata from a tool's
// homepage. It is a fallback used when a cataloged tool arrives without a
// usable description; it never replaces text that already exists.
package scrape

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentstation/toolindex/pkg/errors"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "toolindex/1.0"
)

// PageMeta is the metadata scraped from one homepage.
type PageMeta struct {
	Title       string
	Description string
}

// Scraper fetches homepage metadata over HTTP.
type Scraper struct {
	http *http.Client
}

// New creates a homepage scraper.
func New() *Scraper {
	return &Scraper{http: &http.Client{Timeout: defaultTimeout}}
}

// Fetch downloads the page at url and extracts its title and description.
// The description is tried in order: meta description, Open Graph
// description, first paragraph.
func (s *Scraper) Fetch(ctx context.Context, url string) (*PageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapAPI("scrape", 0, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, errors.WrapAPI("scrape", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.APIError{Source: "scrape", StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.WrapParse("html", url, err)
	}

	return extract(doc), nil
}

func extract(doc *goquery.Document) *PageMeta {
	meta := &PageMeta{}

	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && title != "" {
		meta.Title = strings.TrimSpace(title)
	} else {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && desc != "" {
		meta.Description = strings.TrimSpace(desc)
	} else if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && desc != "" {
		meta.Description = strings.TrimSpace(desc)
	} else {
		meta.Description = strings.TrimSpace(doc.Find("p").First().Text())
	}

	return meta
}
