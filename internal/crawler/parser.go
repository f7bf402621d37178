package crawler

import (
	"iter"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/paramscan/internal/model"
)

// LinkExtractor yields the in-scope anchor targets of an HTML page.
type LinkExtractor struct {
	scope model.Scope
}

// NewLinkExtractor returns an extractor bound to scope.
func NewLinkExtractor(scope model.Scope) *LinkExtractor {
	return &LinkExtractor{scope: scope}
}

// Links returns the href of every <a> element in body, resolved against
// pageURL, whose host is the scope host. Links are produced lazily in
// document order while the page is tokenized; the sequence ends at the
// first tokenizer error, so malformed markup yields whatever was found
// before it. Each iteration tokenizes body again.
func (e *LinkExtractor) Links(pageURL, body string) iter.Seq[string] {
	return func(yield func(string) bool) {
		base, err := url.Parse(pageURL)
		if err != nil {
			return
		}

		z := html.NewTokenizer(strings.NewReader(body))
		for {
			switch z.Next() {
			case html.ErrorToken:
				return
			case html.StartTagToken, html.SelfClosingTagToken:
				name, hasAttr := z.TagName()
				if !hasAttr || atom.Lookup(name) != atom.A {
					continue
				}
				href, ok := hrefAttr(z)
				if !ok {
					continue
				}
				link, ok := e.resolve(base, href)
				if !ok {
					continue
				}
				if !yield(link) {
					return
				}
			default:
			}
		}
	}
}

// resolve resolves href against base and reports whether the result is in
// scope.
func (e *LinkExtractor) resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if !e.scope.Contains(resolved) {
		return "", false
	}
	return resolved.String(), true
}

// hrefAttr returns the first href attribute of the current tag.
func hrefAttr(z *html.Tokenizer) (string, bool) {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "href" {
			return string(val), true
		}
		if !more {
			return "", false
		}
	}
}
