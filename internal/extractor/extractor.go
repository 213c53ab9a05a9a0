// Package extractor pulls anchors out of listing page markup.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidPageURL is returned when the page URL cannot serve as a base.
var ErrInvalidPageURL = errors.New("invalid page url")

// Anchor is one <a href> element in document order.
type Anchor struct {
	// Href is the raw attribute value.
	Href string
	// URL is the canonical absolute URL, empty when Href cannot be resolved.
	URL string
	// Text is the rendered anchor text with whitespace collapsed.
	Text string
}

// Extract returns every anchor carrying an href attribute, unfiltered.
// Malformed markup is parsed best-effort; the only failure is a page URL
// that is not absolute.
func Extract(body []byte, pageURL string) ([]Anchor, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPageURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidPageURL, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var anchors []Anchor
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, resolveErr := Canonicalize(base, href)
		if resolveErr != nil {
			resolved = ""
		}
		anchors = append(anchors, Anchor{
			Href: href,
			URL:  resolved,
			Text: NormalizeText(strings.Join(textNodes(s), " ")),
		})
	})

	return anchors, nil
}

// Canonicalize resolves href against base and drops the fragment.
func Canonicalize(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}

	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""

	return resolved.String(), nil
}

// NormalizeText collapses whitespace runs to single spaces and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textNodes collects the text nodes under s in document order, so adjacent
// elements such as "Part<br>1" render as separate words.
func textNodes(s *goquery.Selection) []string {
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			parts = append(parts, c.Text())
			return
		}
		parts = append(parts, textNodes(c)...)
	})
	return parts
}
