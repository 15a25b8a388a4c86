package driver

// AuthError is returned when the daemon doesn't trust the backend.
type AuthError struct{}

func (e *AuthError) Error() string {
	return "Failed to authenticate to LXD."
}
