package api

import (
	"log"
	"net/http"
	"time"

	"github.com/takallem/takallem/internal/store"
)

// loggingTransport is a decorator that records every request as an event.
type loggingTransport struct {
	inner     http.RoundTripper
	eventRepo store.EventRepo
}

// WithLogging wraps a RoundTripper with event logging.
func WithLogging(rt http.RoundTripper, repo store.EventRepo) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &loggingTransport{inner: rt, eventRepo: repo}
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := l.inner.RoundTrip(req)

	data := store.RequestEventData{
		Method:         req.Method,
		Route:          RouteFrom(req.Context()),
		LatencyMs:      time.Since(start).Milliseconds(),
		IdempotencyKey: req.Header.Get(idempotencyHeader),
	}
	if resp != nil {
		data.Status = resp.StatusCode
		data.Success = resp.StatusCode < 400
		if !data.Success {
			data.ErrorMessage = resp.Status
		}
	}
	if err != nil {
		data.Success = false
		data.ErrorMessage = err.Error()
	}

	// Log the event but don't fail the request if logging fails.
	if logErr := l.eventRepo.AppendRequest(req.Context(), data); logErr != nil {
		log.Printf("warning: failed to log request event: %v", logErr)
	}

	return resp, err
}
