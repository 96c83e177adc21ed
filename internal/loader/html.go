package loader

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

func (l *Loader) loadHTML(name string, data []byte) (Document, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("parse html %s: %w", name, err)
	}

	var b strings.Builder
	extractText(root, &b)

	text := collapseBlankLines(normalize(b.String()))
	if text == "" {
		return Document{}, fmt.Errorf("document %s has no text content", name)
	}
	return Document{Source: name, Text: text}, nil
}

// extractText walks the DOM collecting visible text. Script, style and head
// subtrees are skipped; block elements become paragraph breaks.
func extractText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "head", "template":
			return
		}
	}

	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			b.WriteString(t)
			b.WriteByte(' ')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, b)
	}

	if n.Type == html.ElementNode && isBlock(n.Data) {
		b.WriteString("\n\n")
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "li", "tr", "br",
		"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre":
		return true
	}
	return false
}

// collapseBlankLines squeezes runs of blank lines down to one paragraph break.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
