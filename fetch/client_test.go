package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fiverr-scraper/utils"
)

const gigPage = `<html><head>
	<script type="application/json" id="perseus-initial-props">{"general": {"gigId": 7}}</script>
</head><body>gig</body></html>`

func relayClient(srv *httptest.Server, retries int) *Client {
	return NewClient(Options{
		Mode:           ModeRelay,
		RelayURL:       srv.URL,
		APIKey:         "test-key",
		Timeout:        5 * time.Second,
		MaxRetries:     retries,
		RetryBaseDelay: time.Millisecond,
	}, utils.NewLogger(false))
}

func TestRelayFetchForwardsTargetURL(t *testing.T) {
	var gotKey, gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		gotURL = r.URL.Query().Get("url")
		fmt.Fprint(w, gigPage)
	}))
	defer srv.Close()

	target := "https://www.fiverr.com/search/gigs?query=logo&page=1"
	resp, err := relayClient(srv, 1).Fetch(context.Background(), target, true)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("relay api_key = %q; want test-key", gotKey)
	}
	if gotURL != target {
		t.Errorf("relay url param = %q; want %q", gotURL, target)
	}
	if resp.PropsErr != nil {
		t.Errorf("unexpected props error: %v", resp.PropsErr)
	}
	if got := resp.Props.Get("general", "gigId").Int(); got != 7 {
		t.Errorf("gigId = %d; want 7", got)
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, gigPage)
	}))
	defer srv.Close()

	resp, err := relayClient(srv, 3).Fetch(context.Background(), "https://www.fiverr.com/x", false)
	if err != nil {
		t.Fatalf("Fetch should have recovered, got %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("status = %d; want 200", resp.Status)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("server saw %d requests; want 3", calls)
	}
}

func TestFetchReportsHTTPStatusAfterBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := relayClient(srv, 3).Fetch(context.Background(), "https://www.fiverr.com/x", false)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("error chain missing *fetch.Error: %v", err)
	}
	if fe.Kind != KindHTTPStatus || fe.Status != http.StatusForbidden {
		t.Errorf("got kind=%s status=%d; want http_status 403", fe.Kind, fe.Status)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("server saw %d requests; want 3 (all attempts)", calls)
	}
}

func TestFetchRejectsForeignDomainWithoutRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := relayClient(srv, 3).Fetch(context.Background(), "https://example.com/", false)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindDomainRejected {
		t.Fatalf("expected domain_rejected fetch.Error, got %v", err)
	}
	var de *InvalidDomainError
	if !errors.As(err, &de) {
		t.Errorf("error chain should carry *InvalidDomainError: %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("server saw %d requests; want 0", calls)
	}
	if Retryable(err) {
		t.Error("domain rejection must not be retryable")
	}
}

func TestFetchKeepsHTMLWhenPropsMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>captcha wall</body></html>")
	}))
	defer srv.Close()

	resp, err := relayClient(srv, 1).Fetch(context.Background(), "https://www.fiverr.com/x", true)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if resp.PropsErr == nil {
		t.Error("expected PropsErr for page without embedded state")
	}
	if resp.HTML == "" {
		t.Error("HTML should be preserved even when extraction fails")
	}
	if resp.Props.Exists() {
		t.Error("Props should be absent when extraction fails")
	}
}

func TestDirectModeRejectsForeignHost(t *testing.T) {
	// Direct mode still runs the domain guard, so a non-marketplace host is
	// refused before any request goes out.
	c := NewClient(Options{Mode: ModeDirect, Timeout: time.Second, MaxRetries: 1, RetryBaseDelay: time.Millisecond}, utils.NewLogger(false))
	_, err := c.Fetch(context.Background(), "http://127.0.0.1:9/", false)
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindDomainRejected {
		t.Fatalf("expected domain_rejected, got %v", err)
	}
}
