// Package rewrite repairs HTML documents fetched from the profile host so
// they keep working when served from another origin.
package rewrite

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// preconnectHint is the relative preconnect link emitted by the profile host.
// Left relative, it resolves against the mirror and breaks font preloading.
const preconnectHint = `href="/" crossorigin`

// Rewriter applies the HTML transform for one upstream origin.
// It holds no per-request state and is safe for concurrent use.
type Rewriter struct {
	upstreamRoot string // e.g. "https://linktr.ee/"
	canonical    string // replacement canonical URL; empty disables
	preconnect   string
}

// New returns a Rewriter for the given upstream base URL (scheme and host,
// no trailing slash). canonicalURL, when non-empty, replaces the href of a
// canonical link that points at the upstream.
func New(upstreamBase, canonicalURL string) *Rewriter {
	root := strings.TrimSuffix(upstreamBase, "/") + "/"
	return &Rewriter{
		upstreamRoot: root,
		canonical:    canonicalURL,
		preconnect:   `href="` + root + `" crossorigin`,
	}
}

// Rewrite returns doc with every relative preconnect hint made absolute.
// With a canonical URL configured the canonical link is repointed as well.
// No other bytes of the document change.
func (r *Rewriter) Rewrite(doc string) (string, error) {
	out := strings.ReplaceAll(doc, preconnectHint, r.preconnect)
	if r.canonical == "" {
		return out, nil
	}
	return r.rewriteCanonical(out)
}

// rewriteCanonical locates the canonical link with an HTML parser and swaps
// its href by literal substitution, so the serialized document is untouched
// apart from the attribute value.
func (r *Rewriter) rewriteCanonical(doc string) (string, error) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	href, ok := parsed.Find(`link[rel="canonical"]`).First().Attr("href")
	if !ok || !strings.HasPrefix(href, r.upstreamRoot) {
		return doc, nil
	}

	start, end := canonicalTag(doc)
	if start < 0 {
		return doc, nil
	}
	tag := doc[start:end]

	replacement := `href="` + html.EscapeString(r.canonical) + `"`
	for _, form := range []string{href, html.EscapeString(href)} {
		old := `href="` + form + `"`
		if strings.Contains(tag, old) {
			return doc[:start] + strings.Replace(tag, old, replacement, 1) + doc[end:], nil
		}
	}
	return doc, nil
}

// canonicalTag returns the byte span of the first tag carrying
// rel="canonical", or -1, -1.
func canonicalTag(doc string) (int, int) {
	i := strings.Index(doc, `rel="canonical"`)
	if i < 0 {
		return -1, -1
	}
	start := strings.LastIndexByte(doc[:i], '<')
	end := strings.IndexByte(doc[i:], '>')
	if start < 0 || end < 0 {
		return -1, -1
	}
	return start, i + end + 1
}
