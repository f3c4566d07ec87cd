package httpclient

import (
	"net/http"
	"time"
)

// New returns a client with a hard per-request deadline. A timeout here is a
// transport failure for callers, never an authentication signal.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
