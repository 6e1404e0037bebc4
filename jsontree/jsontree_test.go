package jsontree

import (
	"strings"
	"testing"
)

const sampleDoc = `{
	"general": {"gigId": 421337, "isPro": true, "categoryName": "Programming"},
	"overview": {
		"gig": {"title": "I will build a scraper", "rating": 4.9, "ratingsCount": 212},
		"seller": {"username": "devmax", "countryCode": "DE"}
	},
	"packages": {"packageList": [
		{"title": "Basic", "price": 5000},
		{"title": "Premium", "price": 25000}
	]},
	"empty": null
}`

func mustParse(t *testing.T, raw string) Value {
	t.Helper()
	v, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return v
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"broken":`)); err == nil {
		t.Error("expected error for truncated JSON, got nil")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	if _, err := Parse([]byte(`{"a": 1} trailing`)); err == nil {
		t.Error("expected error for trailing data, got nil")
	}
	if _, err := Parse([]byte(`{"a": 1}   `)); err != nil {
		t.Errorf("trailing whitespace should be fine, got %v", err)
	}
}

func TestGetWalksNestedObjects(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	if got := doc.Get("overview", "gig", "title").Str(); got != "I will build a scraper" {
		t.Errorf("title = %q; want %q", got, "I will build a scraper")
	}
	if got := doc.Get("overview", "seller", "countryCode").Str(); got != "DE" {
		t.Errorf("countryCode = %q; want %q", got, "DE")
	}
}

func TestMissingPathsAreAbsent(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	paths := [][]string{
		{"nope"},
		{"general", "nope"},
		{"overview", "gig", "title", "deeper"},
		{"packages", "packageList", "price"},
	}
	for _, p := range paths {
		if doc.Get(p...).Exists() {
			t.Errorf("Get(%v).Exists() = true; want false", p)
		}
	}

	if doc.Get("nope").Str() != "" {
		t.Error("absent Str() should be empty")
	}
	if doc.Get("nope").Float() != 0 {
		t.Error("absent Float() should be zero")
	}
	if doc.Get("nope").Bool() {
		t.Error("absent Bool() should be false")
	}
}

func TestNullIsPresent(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	if !doc.Get("empty").Exists() {
		t.Error("null node should exist")
	}
}

func TestNumericAccessors(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	if got := doc.Get("general", "gigId").Int(); got != 421337 {
		t.Errorf("gigId = %d; want 421337", got)
	}
	if got := doc.Get("overview", "gig", "rating").Float(); got != 4.9 {
		t.Errorf("rating = %v; want 4.9", got)
	}
	if got := doc.Get("overview", "gig", "rating").Int(); got != 4 {
		t.Errorf("rating as Int = %d; want 4", got)
	}
	if got := doc.Get("overview", "gig", "title").Float(); got != 0 {
		t.Errorf("string node Float() = %v; want 0", got)
	}
}

func TestIndexAndLen(t *testing.T) {
	doc := mustParse(t, sampleDoc)
	list := doc.Get("packages", "packageList")

	if got := list.Len(); got != 2 {
		t.Fatalf("Len() = %d; want 2", got)
	}
	if got := list.Index(1).Get("title").Str(); got != "Premium" {
		t.Errorf("Index(1).title = %q; want Premium", got)
	}
	if list.Index(2).Exists() {
		t.Error("out-of-range Index should be absent")
	}
	if list.Index(-1).Exists() {
		t.Error("negative Index should be absent")
	}
	if got := doc.Get("general").Len(); got != 3 {
		t.Errorf("object Len() = %d; want 3", got)
	}
}

func TestEachPreservesOrder(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	var titles []string
	doc.Get("packages", "packageList").Each(func(v Value) {
		titles = append(titles, v.Get("title").Str())
	})

	if got := strings.Join(titles, ","); got != "Basic,Premium" {
		t.Errorf("Each order = %q; want Basic,Premium", got)
	}
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	doc := mustParse(t, `{"a": 99999999999999999, "b": [1, 2.5]}`)

	out, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	again := mustParse(t, string(out))
	if got := again.Get("a").Int(); got != 99999999999999999 {
		t.Errorf("large int survived as %d; want 99999999999999999", got)
	}
	if got := again.Get("b").Index(1).Float(); got != 2.5 {
		t.Errorf("b[1] = %v; want 2.5", got)
	}
}

func TestZeroValueIsAbsent(t *testing.T) {
	var v Value
	if v.Exists() {
		t.Error("zero Value should be absent")
	}
	if v.Get("x").Exists() || v.Index(0).Exists() {
		t.Error("navigating an absent Value should stay absent")
	}
	if v.String() != "<absent>" {
		t.Errorf("String() = %q; want <absent>", v.String())
	}
}
