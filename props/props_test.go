package props

import (
	"errors"
	"testing"
)

func TestExtractFindsMarkerTag(t *testing.T) {
	html := `<!DOCTYPE html><html><head>
		<script type="application/json" id="perseus-initial-props">{"general": {"gigId": 42}}</script>
	</head><body><p>hi</p></body></html>`

	tree, err := Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got := tree.Get("general", "gigId").Int(); got != 42 {
		t.Errorf("gigId = %d; want 42", got)
	}
}

func TestExtractToleratesMalformedMarkup(t *testing.T) {
	// Unclosed tags and stray brackets around the marker must not matter.
	html := `<html><body><div><span>broken
		<script id="perseus-initial-props">{"listings": [{"gigs": []}]}</script>
		<table><tr><td>loose` // never closed

	tree, err := Extract(html)
	if err != nil {
		t.Fatalf("Extract failed on malformed markup: %v", err)
	}
	if !tree.Get("listings").Exists() {
		t.Error("listings key missing from extracted state")
	}
}

func TestExtractMissingMarker(t *testing.T) {
	html := `<html><head><script id="other-data">{"a":1}</script></head><body></body></html>`

	_, err := Extract(html)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExtractInvalidJSON(t *testing.T) {
	html := `<html><body><script id="perseus-initial-props">{"broken": </script></body></html>`

	_, err := Extract(html)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for invalid JSON, got %v", err)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, html := range []string{"", "   ", "<html></html>", `<script id="perseus-initial-props"></script>`} {
		if _, err := Extract(html); !errors.Is(err, ErrNotFound) {
			t.Errorf("Extract(%q): expected ErrNotFound, got %v", html, err)
		}
	}
}

func TestExtractUsesFirstMarker(t *testing.T) {
	html := `<html><body>
		<script id="perseus-initial-props">{"which": "first"}</script>
		<script id="perseus-initial-props">{"which": "second"}</script>
	</body></html>`

	tree, err := Extract(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got := tree.Get("which").Str(); got != "first" {
		t.Errorf("which = %q; want first", got)
	}
}
