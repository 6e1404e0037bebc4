// Package props extracts the marketplace's embedded page state: the JSON
// document server-rendered into a marker <script> tag that client-side code
// hydrates from. Search and gig pages both carry it, which makes parsing
// the surrounding HTML unnecessary.
package props

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fiverr-scraper/jsontree"
)

// markerSelector addresses the script tag holding the embedded state.
const markerSelector = `script#perseus-initial-props`

// ErrNotFound means the page carries no usable embedded state, either
// because the marker tag is missing or its content is not valid JSON.
var ErrNotFound = errors.New("embedded page state not found")

// Extract parses the HTML and returns the embedded state as a JSON tree.
// Malformed markup is tolerated; only a missing or unparsable marker fails.
func Extract(html string) (jsontree.Value, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return jsontree.Value{}, fmt.Errorf("parse html: %w", err)
	}

	sel := doc.Find(markerSelector).First()
	if sel.Length() == 0 {
		return jsontree.Value{}, ErrNotFound
	}

	raw := strings.TrimSpace(sel.Text())
	if raw == "" {
		return jsontree.Value{}, ErrNotFound
	}

	tree, err := jsontree.Parse([]byte(raw))
	if err != nil {
		return jsontree.Value{}, fmt.Errorf("%w: invalid JSON in marker tag: %v", ErrNotFound, err)
	}
	return tree, nil
}
