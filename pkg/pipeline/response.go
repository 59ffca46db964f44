package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
)

// Response is a buffering http.ResponseWriter. Nothing reaches the client
// until Send is called, so after hooks can still change headers and cookies.
type Response struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

// NewResponse creates an empty response with status 200.
func NewResponse() *Response {
	return &Response{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

// Header returns the response header map.
func (r *Response) Header() http.Header {
	return r.header
}

// Write appends to the buffered body. Like net/http, writing before
// WriteHeader commits status 200.
func (r *Response) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.body.Write(b)
	if err != nil {
		return n, fmt.Errorf("buffering response: %w", err)
	}
	return n, nil
}

// WriteHeader records the status code. Only the first call counts.
func (r *Response) WriteHeader(statusCode int) {
	if r.wroteHeader {
		slog.Debug("pipeline: superfluous WriteHeader call", "status", statusCode, "kept", r.status)
		return
	}
	r.wroteHeader = true
	r.status = statusCode
}

// Send sends the buffered header, status and body to w.
func (r *Response) Send(w http.ResponseWriter) error {
	dst := w.Header()
	maps.Copy(dst, r.header)
	w.WriteHeader(r.status)
	if _, err := w.Write(r.body.Bytes()); err != nil {
		return fmt.Errorf("writing response body: %w", err)
	}
	return nil
}
