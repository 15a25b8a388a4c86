package api

import (
	"fmt"
)

// StatusCode is the numeric status the daemon reports for operations and instances.
type StatusCode int

// Instance and operation states, below 200.
const (
	OperationCreated StatusCode = 100
	Started          StatusCode = 101
	Stopped          StatusCode = 102
	Running          StatusCode = 103
	Cancelling       StatusCode = 104
	Pending          StatusCode = 105
	Starting         StatusCode = 106
	Stopping         StatusCode = 107
	Aborting         StatusCode = 108
	Freezing         StatusCode = 109
	Frozen           StatusCode = 110
	Thawed           StatusCode = 111
	Error            StatusCode = 112
	Ready            StatusCode = 113
)

// Final states. Failures are 400 and up.
const (
	Success   StatusCode = 200
	Failure   StatusCode = 400
	Cancelled StatusCode = 401
)

// String returns the name the daemon uses for the code in its "status" fields.
func (o StatusCode) String() string {
	switch o {
	case OperationCreated:
		return "Operation created"
	case Started:
		return "Started"
	case Stopped:
		return "Stopped"
	case Running:
		return "Running"
	case Cancelling:
		return "Cancelling"
	case Pending:
		return "Pending"
	case Starting:
		return "Starting"
	case Stopping:
		return "Stopping"
	case Aborting:
		return "Aborting"
	case Freezing:
		return "Freezing"
	case Frozen:
		return "Frozen"
	case Thawed:
		return "Thawed"
	case Error:
		return "Error"
	case Ready:
		return "Ready"
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case Cancelled:
		return "Cancelled"
	}

	return fmt.Sprintf("Status %d", int(o))
}

// IsFinal reports whether an operation with this code is over.
func (o StatusCode) IsFinal() bool {
	return o >= Success
}

// IsFailure reports whether an operation with this code is over and failed.
func (o StatusCode) IsFailure() bool {
	return o >= Failure
}
