// Package sitemap renders and publishes the site's sitemap XML: one urlset
// per page family (static, tools, categories, comparisons) plus an index
// file referencing them. Tools in the noindex tier are excluded.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/logging"
	"github.com/agentstation/toolindex/pkg/scoring"
	"github.com/agentstation/toolindex/pkg/slugs"
)

const (
	xmlNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// Prefix is the storage key prefix sitemap files are published under.
	Prefix = "sitemaps/"
)

// Sitemap file names.
const (
	FileStatic      = "sitemap-static.xml"
	FileTools       = "sitemap-tools.xml"
	FileCategories  = "sitemap-categories.xml"
	FileComparisons = "sitemap-comparisons.xml"
	FileIndex       = "sitemap-index.xml"
)

type urlEntry struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type sitemapRef struct {
	XMLName xml.Name `xml:"sitemap"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	XMLNS    string       `xml:"xmlns,attr"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

// Build renders every sitemap file for the catalog against baseURL and
// returns the XML blobs keyed by file name.
func Build(doc *catalog.Document, baseURL string) (map[string][]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	today := time.Now().UTC().Format("2006-01-02")

	staticEntries := []urlEntry{
		{Loc: base, LastMod: today},
		{Loc: base + "/pipeline-status", LastMod: today},
	}
	toolEntries := buildToolEntries(doc.Tools, base)
	categoryEntries := buildCategoryEntries(doc.Tools, base)
	comparisonEntries := buildComparisonEntries(doc.Tools, base)

	files := map[string][]urlEntry{
		FileStatic:      staticEntries,
		FileTools:       toolEntries,
		FileCategories:  categoryEntries,
		FileComparisons: comparisonEntries,
	}

	blobs := make(map[string][]byte, len(files)+1)
	var refs []sitemapRef
	for _, name := range []string{FileStatic, FileTools, FileCategories, FileComparisons} {
		entries := files[name]
		blob, err := renderURLSet(entries)
		if err != nil {
			return nil, err
		}
		blobs[name] = blob
		refs = append(refs, sitemapRef{
			Loc:     base + "/sitemaps/" + name,
			LastMod: latestLastMod(entries, today),
		})
	}

	index, err := xml.MarshalIndent(sitemapIndex{XMLNS: xmlNamespace, Sitemaps: refs}, "", "  ")
	if err != nil {
		return nil, errors.WrapParse("xml", FileIndex, err)
	}
	blobs[FileIndex] = append([]byte(xml.Header), index...)

	return blobs, nil
}

// Publish builds and uploads every sitemap file.
func Publish(ctx context.Context, store storage.Store, doc *catalog.Document, baseURL string) error {
	blobs, err := Build(doc, baseURL)
	if err != nil {
		return err
	}
	for name, blob := range blobs {
		key := Prefix + name
		if err := store.Put(ctx, key, blob, "application/xml"); err != nil {
			return err
		}
		logging.Ctx(ctx).Info().Str("key", key).Int("bytes", len(blob)).Msg("published sitemap")
	}
	return nil
}

func buildToolEntries(tools []*catalog.Tool, base string) []urlEntry {
	entries := make([]urlEntry, 0, len(tools))
	for _, tool := range tools {
		if tool.Tier == scoring.TierNoIndex {
			continue
		}
		slug := tool.Slug
		if slug == "" {
			slug = slugs.ForTool(tool.Name, "", "")
		}
		if slug == "" {
			continue
		}
		entries = append(entries, urlEntry{
			Loc:     base + "/tools/" + url.PathEscape(slug),
			LastMod: chooseLastMod(tool.EnhancedAt),
		})
	}
	return entries
}

func buildCategoryEntries(tools []*catalog.Tool, base string) []urlEntry {
	seen := make(map[string]string) // slug -> lastmod
	for _, tool := range tools {
		if tool.Category == "" || tool.Tier == scoring.TierNoIndex {
			continue
		}
		slug := slugs.Derive(tool.Category, slugs.DefaultMaxLength)
		if slug == "" {
			continue
		}
		lastmod := chooseLastMod(tool.EnhancedAt)
		if prev, ok := seen[slug]; !ok || lastmod > prev {
			seen[slug] = lastmod
		}
	}

	ordered := make([]string, 0, len(seen))
	for slug := range seen {
		ordered = append(ordered, slug)
	}
	sort.Strings(ordered)

	entries := make([]urlEntry, 0, len(ordered))
	for _, slug := range ordered {
		entries = append(entries, urlEntry{
			Loc:     base + "/category/" + url.PathEscape(slug),
			LastMod: seen[slug],
		})
	}
	return entries
}

func buildComparisonEntries(tools []*catalog.Tool, base string) []urlEntry {
	seen := make(map[string]struct{})
	var entries []urlEntry
	for _, tool := range tools {
		for _, comparison := range tool.Comparisons {
			if comparison.Slug == "" {
				continue
			}
			if _, done := seen[comparison.Slug]; done {
				continue
			}
			seen[comparison.Slug] = struct{}{}

			lastmod := time.Now().UTC().Format("2006-01-02")
			if !comparison.GeneratedAt.IsZero() {
				lastmod = comparison.GeneratedAt.UTC().Format("2006-01-02")
			}
			entries = append(entries, urlEntry{
				Loc:     base + "/compare/" + url.PathEscape(comparison.Slug),
				LastMod: lastmod,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Loc < entries[j].Loc })
	return entries
}

// chooseLastMod converts an RFC 3339 timestamp to a sitemap date, falling
// back to today when absent or malformed.
func chooseLastMod(timestamps ...string) string {
	var best time.Time
	for _, raw := range timestamps {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		if ts.After(best) {
			best = ts
		}
	}
	if best.IsZero() {
		best = time.Now().UTC()
	}
	return best.UTC().Format("2006-01-02")
}

func latestLastMod(entries []urlEntry, fallback string) string {
	best := ""
	for _, entry := range entries {
		if entry.LastMod > best {
			best = entry.LastMod
		}
	}
	if best == "" {
		return fallback
	}
	return best
}

func renderURLSet(entries []urlEntry) ([]byte, error) {
	blob, err := xml.MarshalIndent(urlSet{XMLNS: xmlNamespace, URLs: entries}, "", "  ")
	if err != nil {
		return nil, errors.WrapParse("xml", "urlset", err)
	}
	return append([]byte(xml.Header), blob...), nil
}

// Describe returns a short human label for a sitemap file name, used by
// the CLI listing.
func Describe(name string) string {
	switch name {
	case FileStatic:
		return "Static routes and landing pages"
	case FileTools:
		return "Individual tool detail pages"
	case FileCategories:
		return "Category listing pages"
	case FileComparisons:
		return "Tool comparison guides"
	case FileIndex:
		return "Sitemap index"
	default:
		return fmt.Sprintf("Unknown sitemap %q", name)
	}
}
