package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a fetch failure for retry decisions and reporting.
type Kind string

const (
	// KindTransient covers network-level failures worth retrying.
	KindTransient Kind = "transient"
	// KindTimeout covers deadline and read-timeout failures.
	KindTimeout Kind = "timeout"
	// KindHTTPStatus covers responses outside the 2xx range.
	KindHTTPStatus Kind = "http_status"
	// KindDomainRejected covers URLs refused by the domain guard. Never
	// retried, no request is made.
	KindDomainRejected Kind = "domain_rejected"
)

// Error is the failure type returned by Client.Fetch.
type Error struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	case KindDomainRejected:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt at the same request could
// succeed. Domain rejections are permanent; everything else, including
// non-2xx statuses from anti-bot layers, is worth retrying.
func Retryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind != KindDomainRejected
	}
	var de *InvalidDomainError
	return !errors.As(err, &de)
}

// classify maps a transport error to its failure kind.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindTransient
}
