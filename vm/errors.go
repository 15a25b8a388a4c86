package vm

// StateError is returned when a lifecycle operation isn't possible in the current state.
type StateError struct {
	msg string
}

// NewStateError returns a StateError with the given message.
func NewStateError(msg string) *StateError {
	return &StateError{msg: msg}
}

func (e *StateError) Error() string {
	return e.msg
}

// StartError is returned when a virtual machine failed to reach the running state.
type StartError struct {
	Name string
	msg  string
}

// NewStartError returns a StartError for the named virtual machine.
func NewStartError(name string, msg string) *StartError {
	return &StartError{Name: name, msg: msg}
}

func (e *StartError) Error() string {
	return e.msg
}

// Is matches any StartError carrying the same message.
func (e *StartError) Is(target error) bool {
	t, ok := target.(*StartError)
	return ok && t.msg == e.msg
}

// Common lifecycle errors.
var (
	ErrSuspendNotSupported  = NewStateError("suspend is currently not supported")
	ErrStartWhileSuspending = NewStateError("cannot start the instance while suspending")
	ErrShutdownDuringStart  = NewStartError("", "Instance shutdown during start")
)
