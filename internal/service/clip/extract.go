// Package clip turns a captured web page into a note: it pulls metadata
// and readable text out of the page's HTML and files the result through
// the note service.
package clip

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"secondbrain-backend/internal/domain"
	appErrors "secondbrain-backend/pkg/errors"
)

// truncateLimit caps the description excerpt stored with a clip.
const truncateLimit = 500

// Page is the extracted representation of a captured web page.
type Page struct {
	Title    string
	Content  string
	Metadata domain.SourceMetadata
}

// Extract parses raw HTML and pulls out the title, source metadata, and a
// cleaned text body.
func Extract(html, url string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, appErrors.NewMalformed("failed to parse page HTML", err)
	}

	meta := domain.SourceMetadata{URL: url}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		name, _ := s.Attr("name")
		if property, ok := s.Attr("property"); ok {
			name = property
		}
		switch name {
		case "og:title":
			title = content
		case "og:description", "description":
			if meta.Description == "" {
				meta.Description = content
			}
		case "og:image":
			meta.ImageURL = content
		case "og:site_name":
			meta.SiteName = content
		case "article:published_time":
			meta.PublishedTime = content
		case "article:author", "author":
			meta.Author = content
		}
	})

	body := extractBody(doc)

	return &Page{
		Title:    title,
		Content:  formatContent(title, meta, body),
		Metadata: meta,
	}, nil
}

// extractBody prefers article/main over the whole body and strips chrome
// elements before collecting text.
func extractBody(doc *goquery.Document) string {
	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	root.Find("script, style, nav, header, footer, iframe").Remove()

	var lines []string
	for _, line := range strings.Split(root.Text(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// formatContent lays the clip out the way the browser extension does:
// labeled metadata lines, a divider, the page text, and the source URL.
func formatContent(title string, meta domain.SourceMetadata, body string) string {
	lines := []string{"Title: " + title}
	if meta.Description != "" {
		lines = append(lines, "Description: "+meta.Description)
	}
	if meta.SiteName != "" {
		lines = append(lines, "Site: "+meta.SiteName)
	}
	if meta.Author != "" {
		lines = append(lines, "Author: "+meta.Author)
	}
	if meta.PublishedTime != "" {
		lines = append(lines, "Published: "+meta.PublishedTime)
	}
	if meta.ImageURL != "" {
		lines = append(lines, "Featured Image: "+meta.ImageURL)
	}
	lines = append(lines, "", "Content:", strings.Repeat("-", 40), body, "", "Source: "+meta.URL)
	return strings.Join(lines, "\n")
}

// Truncate shortens text to at most max characters, preferring to cut at
// the end of a sentence.
func Truncate(content string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(content) <= max {
		return content
	}

	cut := content[:max]
	last := -1
	for _, punct := range []string{".", "?", "!"} {
		if i := strings.LastIndex(cut, punct); i > last {
			last = i
		}
	}
	if last > 0 {
		return cut[:last+1] + " [Content truncated...]"
	}
	// Leave room for the suffix; for tiny limits a plain hard cut is all
	// that fits.
	if max <= 20 {
		return cut
	}
	return fmt.Sprintf("%s... [Truncated]", cut[:max-20])
}
