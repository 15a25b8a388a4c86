package lxd

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/canonical/multipass-lxd/shared/api"
)

// ConnectionError is returned when the daemon could not be reached at all.
type ConnectionError struct {
	URL string
	Err error
}

// Error returns the underlying transport error message unchanged.
func (e *ConnectionError) Error() string {
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when no reply arrived within the allotted time.
type TimeoutError struct {
	Method string
	URL    string
}

func (e *TimeoutError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("Timeout waiting for %s", e.URL)
	}

	return fmt.Sprintf("Timeout getting response for %s operation on %s", e.Method, e.URL)
}

// ProtocolError is returned when the daemon replied with something other than a successful response.
type ProtocolError struct {
	URL string

	msg string
	err error
}

func (e *ProtocolError) Error() string {
	return e.msg
}

func (e *ProtocolError) Unwrap() error {
	return e.err
}

func networkError(url string, status int, text string) *ProtocolError {
	return &ProtocolError{
		URL: url,
		msg: fmt.Sprintf("Network error for %s: Error - %s", url, text),
		err: api.StatusErrorf(status, "%s", text),
	}
}

// IsConnectionError reports whether err means the daemon could not be reached.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsTimeoutError reports whether err is the result of a request or operation running out of time.
func IsTimeoutError(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// GetLocalLXDErr determines whether or not an error is likely due to a
// local LXD configuration issue, and if so, returns the underlying error.
func GetLocalLXDErr(err error) error {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return nil
	}

	switch errno {
	case unix.ENOENT, unix.ECONNREFUSED, unix.EACCES:
		return errno
	}

	return nil
}
