package lxd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
)

// DefaultRequestTimeout bounds a single request when the caller doesn't provide a timeout.
const DefaultRequestTimeout = 5 * time.Second

// requestCategory is the logging category of every message emitted by the request layer.
const requestCategory = "lxd request"

// ProtocolLXD represents a LXD API server.
type ProtocolLXD struct {
	ctx context.Context

	http          Transport
	httpHost      string
	httpUnixPath  string
	httpUserAgent string

	project        string
	metrics        *requestMetrics
	requestTimeout time.Duration
}

// HTTPHost returns the base URL requests are sent to.
func (r *ProtocolLXD) HTTPHost() string {
	return r.httpHost
}

// Project returns the project used by project-scoped requests.
func (r *ProtocolLXD) Project() string {
	return r.project
}

// UseProject returns a client that will use a specific project.
func (r *ProtocolLXD) UseProject(name string) *ProtocolLXD {
	return &ProtocolLXD{
		ctx:            r.ctx,
		http:           r.http,
		httpHost:       r.httpHost,
		httpUnixPath:   r.httpUnixPath,
		httpUserAgent:  r.httpUserAgent,
		project:        name,
		metrics:        r.metrics,
		requestTimeout: r.requestTimeout,
	}
}

// APIURL returns the versioned API root, e.g. http://unix.socket/1.0.
func (r *ProtocolLXD) APIURL() string {
	return fmt.Sprintf("%s/1.0", r.httpHost)
}

// RawQuery allows directly querying the LXD API.
//
// The data argument is either nil, a *Multipart or any value that can be encoded to JSON.
// A timeout of zero means the timeout the client was connected with.
func (r *ProtocolLXD) RawQuery(ctx context.Context, method string, url string, data any, timeout time.Duration) (*api.Response, error) {
	if timeout <= 0 {
		timeout = r.requestTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := r.rawQuery(ctx, method, url, data)
	r.metrics.observe(method, err, time.Since(start))

	return resp, err
}

// Internal functions
func (r *ProtocolLXD) rawQuery(ctx context.Context, method string, url string, data any) (*api.Response, error) {
	l := logger.AddContext(logger.Ctx{"category": requestCategory})

	// Log the request
	l.Debug("Sending request to LXD", logger.Ctx{"method": method, "url": url})

	var body io.Reader
	var contentType string

	multipart, isMultipart := data.(*Multipart)

	switch payload := data.(type) {
	case nil:
	case *Multipart:
		contentType = multipart.contentType()
	default:
		// Encode the provided data
		content, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		body = bytes.NewReader(content)
		contentType = "application/json"

		// Log the data
		l.Trace(logger.Pretty(payload))
	}

	// The multipart body gets streamed while the transport reads it.
	var pipeWriter *io.PipeWriter
	if isMultipart {
		body, pipeWriter = io.Pipe()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		if pipeWriter != nil {
			_ = pipeWriter.Close()
		}

		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if isMultipart {
		for k, v := range multipart.Headers {
			req.Header.Set(k, v)
		}

		go multipart.writeTo(pipeWriter)
	}

	// Set the user agent
	if r.httpUserAgent != "" {
		req.Header.Set("User-Agent", r.httpUserAgent)
	}

	// Send the request
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, r.transportError(ctx, l, method, url, err)
	}

	defer func() { _ = resp.Body.Close() }()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, r.transportError(ctx, l, method, url, err)
	}

	return parseResponse(l, method, url, resp.StatusCode, content)
}

// transportError classifies a failure to exchange a request with the daemon.
func (r *ProtocolLXD) transportError(ctx context.Context, l logger.Logger, method string, url string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		timeoutErr := &TimeoutError{Method: method, URL: url}
		l.Error(timeoutErr.Error())
		return timeoutErr
	}

	connErr := &ConnectionError{URL: url, Err: err}
	l.Error("Failed to connect to LXD", logger.Ctx{"url": url, "err": err})

	return connErr
}

// parseResponse turns the raw reply of the daemon into a Response, classifying failures.
func parseResponse(l logger.Logger, method string, url string, status int, content []byte) (*api.Response, error) {
	if status >= http.StatusBadRequest {
		text := http.StatusText(status)

		envelope := api.Response{}
		if json.Unmarshal(content, &envelope) == nil && envelope.Error != "" {
			text = envelope.Error
		}

		err := networkError(url, status, text)

		// Lookups rely on not-found replies.
		if status == http.StatusNotFound {
			l.Debug(err.Error())
		} else {
			l.Error(err.Error())
		}

		return nil, err
	}

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		err := &ProtocolError{URL: url, msg: fmt.Sprintf("Empty reply received for %s operation on %s", method, url)}
		l.Error(err.Error())
		return nil, err
	}

	var raw any
	err := json.Unmarshal(trimmed, &raw)
	if err != nil {
		parseErr := &ProtocolError{URL: url, msg: fmt.Sprintf("Error parsing JSON response for %s: %v\n%s", url, err, trimmed), err: err}
		l.Debug(parseErr.Error())
		return nil, parseErr
	}

	_, ok := raw.(map[string]any)
	if !ok {
		shapeErr := &ProtocolError{URL: url, msg: fmt.Sprintf("Invalid LXD response for %s: expected a JSON object, got %s", url, trimmed)}
		l.Debug(shapeErr.Error())
		return nil, shapeErr
	}

	response := api.Response{}
	err = json.Unmarshal(trimmed, &response)
	if err != nil {
		parseErr := &ProtocolError{URL: url, msg: fmt.Sprintf("Error parsing JSON response for %s: %v\n%s", url, err, trimmed), err: err}
		l.Debug(parseErr.Error())
		return nil, parseErr
	}

	// Handle errors
	if response.Type == api.ErrorResponse {
		code := response.Code
		if code == 0 {
			code = http.StatusInternalServerError
		}

		err := networkError(url, code, response.Error)
		l.Error(err.Error())
		return nil, err
	}

	return &response, nil
}

// query sends a request to a path below the versioned API root.
func (r *ProtocolLXD) query(method string, path string, data any, timeout time.Duration) (*api.Response, error) {
	// Generate the URL
	url := fmt.Sprintf("%s%s", r.APIURL(), path)

	return r.RawQuery(r.ctx, method, url, data, timeout)
}

// queryStruct sends a request and decodes the metadata of the reply into target.
func (r *ProtocolLXD) queryStruct(method string, path string, data any, target any) error {
	resp, err := r.query(method, path, data, 0)
	if err != nil {
		return err
	}

	err = resp.MetadataAsStruct(target)
	if err != nil {
		return &ProtocolError{URL: path, msg: fmt.Sprintf("Invalid metadata for %s: %v", path, err), err: err}
	}

	return nil
}

// queryOperation sends a request expected to spawn an operation and waits for it.
func (r *ProtocolLXD) queryOperation(method string, path string, data any, timeout time.Duration) (*api.Response, error) {
	resp, err := r.query(method, path, data, 0)
	if err != nil {
		return nil, err
	}

	return r.Wait(r.ctx, r.APIURL(), resp, timeout)
}

// setQueryAttributes adds the project parameter to a path.
func (r *ProtocolLXD) setQueryAttributes(path string) string {
	values := url.Values{}
	values.Set("project", r.project)

	if strings.Contains(path, "?") {
		return path + "&" + values.Encode()
	}

	return path + "?" + values.Encode()
}
