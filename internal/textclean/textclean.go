// Package textclean turns raw feed markup into plain single-line text.
package textclean

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	urlPattern        = regexp.MustCompile(`https?://(?:[A-Za-z0-9$\-_@.&+!*(),/:;=?#~'\[\]]|%[0-9a-fA-F]{2})+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// blockSelector lists elements whose boundaries separate words.
const blockSelector = "p, div, br, li, tr, td, th, h1, h2, h3, h4, h5, h6, blockquote, section, article, figcaption"

// Clean strips markup, drops http(s) URLs and collapses whitespace.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := stripMarkup(raw)
	text = urlPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func stripMarkup(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return stripTags(raw)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterNodes(&html.Node{Type: html.TextNode, Data: " "})
	})
	return doc.Text()
}

// stripTags drops everything between '<' and '>'.
func stripTags(content string) string {
	inTag := false
	var result strings.Builder
	for _, char := range content {
		if char == '<' {
			inTag = true
		} else if char == '>' {
			inTag = false
		} else if !inTag {
			result.WriteRune(char)
		}
	}
	return result.String()
}
