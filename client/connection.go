package lxd

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/multipass-lxd/shared/logger"
)

// DefaultSocketDir is the LXD state directory used when neither $LXD_SOCKET nor $LXD_DIR are set.
const DefaultSocketDir = "/var/snap/lxd/common/lxd"

// Transport sends a single HTTP request and returns its reply.
//
// *http.Client satisfies this interface.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// ConnectionArgs represents a set of common connection properties.
type ConnectionArgs struct {
	// User agent string
	UserAgent string

	// Project used for project-scoped requests (defaults to "default")
	Project string

	// Custom transport (used instead of the Unix socket client)
	Transport Transport

	// Registry the request metrics get registered on (metrics are not exported when nil)
	Registerer prometheus.Registerer

	// Skip automatic GetServer request upon connection
	SkipGetServer bool

	// Timeout of requests not given one explicitly (defaults to DefaultRequestTimeout)
	RequestTimeout time.Duration
}

// ConnectLXDUnix lets you connect to a local LXD daemon over a Unix socket.
//
// If the path argument is empty, then $LXD_SOCKET will be used, if
// unset $LXD_DIR/unix.socket will be used and if that one isn't set
// either, then the path will default to DefaultSocketDir/unix.socket.
func ConnectLXDUnix(path string, args *ConnectionArgs) (*ProtocolLXD, error) {
	logger.Debug("Connecting to a local LXD over a Unix socket")

	// Use empty args if not specified
	if args == nil {
		args = &ConnectionArgs{}
	}

	// Determine the socket path
	if path == "" {
		path = os.Getenv("LXD_SOCKET")
		if path == "" {
			lxdDir := os.Getenv("LXD_DIR")
			if lxdDir == "" {
				lxdDir = DefaultSocketDir
			}

			path = filepath.Join(lxdDir, "unix.socket")
		}
	}

	transport := args.Transport
	if transport == nil {
		transport = unixHTTPClient(path)
	}

	server, err := newProtocolLXD("http://unix.socket", transport, args)
	if err != nil {
		return nil, err
	}

	server.httpUnixPath = path

	// Test the connection and seed the server information
	if !args.SkipGetServer {
		_, err := server.GetServer()
		if err != nil {
			return nil, err
		}
	}

	return server, nil
}

// ConnectLXD returns a client talking to host through the given transport.
//
// No request is sent until the first call.
func ConnectLXD(host string, transport Transport, args *ConnectionArgs) (*ProtocolLXD, error) {
	if args == nil {
		args = &ConnectionArgs{}
	}

	return newProtocolLXD(host, transport, args)
}

func newProtocolLXD(host string, transport Transport, args *ConnectionArgs) (*ProtocolLXD, error) {
	project := args.Project
	if project == "" {
		project = "default"
	}

	requestTimeout := args.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	metrics, err := newRequestMetrics(args.Registerer)
	if err != nil {
		return nil, err
	}

	return &ProtocolLXD{
		ctx:            context.Background(),
		http:           transport,
		httpHost:       host,
		httpUserAgent:  args.UserAgent,
		project:        project,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}, nil
}

// unixHTTPClient returns an HTTP client dialing the given Unix socket for every request.
func unixHTTPClient(path string) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, "unix", path)
		},
		DisableKeepAlives:     true,
		ExpectContinueTimeout: time.Second * 30,
		ResponseHeaderTimeout: time.Second * 3600,
		TLSHandshakeTimeout:   time.Second * 5,
	}

	return &http.Client{Transport: transport}
}
