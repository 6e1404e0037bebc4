package fetch

import (
	"fmt"
	"net/url"
	"strings"
)

// allowedHosts is the fixed set of marketplace hostnames requests may
// target. Everything else is rejected before any network traffic happens.
var allowedHosts = map[string]bool{
	"fiverr.com":     true,
	"www.fiverr.com": true,
}

// InvalidDomainError reports a URL that failed the domain guard.
type InvalidDomainError struct {
	URL  string
	Host string
}

func (e *InvalidDomainError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("invalid url %q", e.URL)
	}
	return fmt.Sprintf("host %q not allowed (url %q)", e.Host, e.URL)
}

// ValidateURL checks that raw is an absolute http(s) URL on an allowed
// host and returns it otherwise unchanged, with surrounding whitespace
// trimmed. Comparison is case-insensitive on the hostname; ports and
// subdomains are not accepted.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &InvalidDomainError{URL: raw}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &InvalidDomainError{URL: raw, Host: u.Hostname()}
	}
	host := strings.ToLower(u.Hostname())
	if u.Port() != "" || !allowedHosts[host] {
		return "", &InvalidDomainError{URL: raw, Host: host}
	}
	return trimmed, nil
}
