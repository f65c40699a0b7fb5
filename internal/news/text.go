package news

import (
	"html"
	"net/url"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// strictPolicy strips every tag. bluemonday policies are safe for
// concurrent use once built.
var strictPolicy = bluemonday.StrictPolicy()

// StripMarkup turns backend-supplied text into plain text: tags are
// removed, entities decoded and the result passed through CleanText.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}
	return CleanText(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// CleanText makes s safe to print on a terminal. Escape sequences are
// removed, any other control character becomes a space and runs of
// whitespace collapse to one.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	plain := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, ansi.Strip(s))
	return strings.Join(strings.Fields(plain), " ")
}

// IsWebURL reports whether s is an absolute http or https URL free of
// control characters.
func IsWebURL(s string) bool {
	s = strings.TrimSpace(s)
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return false
	}
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FirstLink returns the href of the first anchor in an HTML fragment that
// points to a web URL. Aggregators such as Google News wrap the publisher
// link inside the description.
func FirstLink(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return ""
	}
	nodes, err := xhtml.ParseFragment(strings.NewReader(fragment), &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return ""
	}
	for _, n := range nodes {
		if href, ok := findAnchor(n); ok {
			return href
		}
	}
	return ""
}

func findAnchor(n *xhtml.Node) (string, bool) {
	if n.Type == xhtml.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" && IsWebURL(attr.Val) {
				return strings.TrimSpace(attr.Val), true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href, ok := findAnchor(c); ok {
			return href, true
		}
	}
	return "", false
}
