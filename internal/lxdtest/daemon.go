// Package lxdtest provides an in-process stand-in for the LXD REST API.
//
// A Daemon satisfies the client Transport interface, so a client can be
// pointed at it without any socket. Every request is recorded and routed
// through a chi router on which tests register the endpoints they need.
package lxdtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/canonical/multipass-lxd/shared/api"
)

// Host is the base URL clients talking to a Daemon should use.
const Host = "http://lxd.test"

// Request is a request received by the Daemon.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Body     []byte
}

// URL returns the path and query of the request.
func (r Request) URL() string {
	if r.RawQuery == "" {
		return r.Path
	}

	return r.Path + "?" + r.RawQuery
}

// Daemon is a fake LXD daemon.
type Daemon struct {
	router chi.Router

	mu         sync.Mutex
	requests   []Request
	operations map[string]api.Operation
	connErr    error
	hang       bool
}

// New returns a Daemon answering 404 to everything until routes are registered.
func New() *Daemon {
	d := &Daemon{
		router:     chi.NewRouter(),
		operations: map[string]api.Operation{},
	}

	d.router.NotFound(NotFound)
	d.router.MethodNotAllowed(NotFound)

	return d
}

// Handle registers a handler for the method and path pattern (chi syntax).
func (d *Daemon) Handle(method string, pattern string, h http.HandlerFunc) {
	d.router.Method(method, pattern, h)
}

// FailWith makes every following request fail at the transport level with err.
func (d *Daemon) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connErr = err
}

// Hang makes every following request block until its context expires.
func (d *Daemon) Hang() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hang = true
}

// Do implements the client transport.
func (d *Daemon) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	d.mu.Lock()
	d.requests = append(d.requests, Request{Method: req.Method, Path: req.URL.Path, RawQuery: req.URL.RawQuery, Body: body})
	connErr := d.connErr
	hang := d.hang
	d.mu.Unlock()

	if connErr != nil {
		return nil, connErr
	}

	if hang {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}

	routed := req.Clone(req.Context())
	routed.Body = io.NopCloser(bytes.NewReader(body))

	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, routed)

	return rec.Result(), nil
}

// Requests returns every request received so far.
func (d *Daemon) Requests() []Request {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]Request(nil), d.requests...)
}

// Count returns how many requests with the given method had a path starting with prefix.
func (d *Daemon) Count(method string, prefix string) int {
	count := 0
	for _, r := range d.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			count++
		}
	}

	return count
}

// LastBody returns the body of the most recent request with the given method and path.
func (d *Daemon) LastBody(method string, path string) []byte {
	requests := d.Requests()
	for i := len(requests) - 1; i >= 0; i-- {
		if requests[i].Method == method && requests[i].Path == path {
			return requests[i].Body
		}
	}

	return nil
}

// HandleOperations serves the wait endpoint, completing every operation started through StartOperation.
func (d *Daemon) HandleOperations() {
	d.Handle(http.MethodGet, "/1.0/operations/{id}/wait", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		op, ok := d.operations[chi.URLParam(r, "id")]
		d.mu.Unlock()

		if !ok {
			NotFound(w, r)
			return
		}

		op.Status = api.Success.String()
		op.StatusCode = api.Success
		op.UpdatedAt = time.Now()

		WriteSync(w, op)
	})
}

// StartOperation registers a running operation and writes the matching async response.
func (d *Daemon) StartOperation(w http.ResponseWriter, description string, metadata map[string]any) api.Operation {
	op := api.Operation{
		ID:          uuid.New().String(),
		Class:       api.OperationClassTask,
		Description: description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Status:      api.Running.String(),
		StatusCode:  api.Running,
		Metadata:    metadata,
		Location:    "none",
	}

	d.mu.Lock()
	d.operations[op.ID] = op
	d.mu.Unlock()

	WriteAsync(w, op)

	return op
}

// NotFound answers the way the daemon does for unknown resources.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not found")
}

// WriteRaw writes body as is.
func WriteRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// WriteSync writes a successful synchronous response carrying metadata.
func WriteSync(w http.ResponseWriter, metadata any) {
	writeResponse(w, http.StatusOK, map[string]any{
		"type":        api.SyncResponse,
		"status":      api.Success.String(),
		"status_code": api.Success,
		"operation":   "",
		"error_code":  0,
		"error":       "",
		"metadata":    metadata,
	})
}

// WriteAsync writes the response of a request that spawned op.
func WriteAsync(w http.ResponseWriter, op api.Operation) {
	writeResponse(w, http.StatusAccepted, map[string]any{
		"type":        api.AsyncResponse,
		"status":      api.OperationCreated.String(),
		"status_code": api.OperationCreated,
		"operation":   "/1.0/operations/" + op.ID,
		"error_code":  0,
		"error":       "",
		"metadata":    op,
	})
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, map[string]any{
		"type":       api.ErrorResponse,
		"error":      msg,
		"error_code": status,
		"metadata":   map[string]any{},
	})
}

func writeResponse(w http.ResponseWriter, status int, resp map[string]any) {
	content, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	WriteRaw(w, status, string(content))
}
