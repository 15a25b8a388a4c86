package api

import (
	"time"
)

// OperationClassTask represents the Task OperationClass.
const OperationClassTask = "task"

// OperationClassWebsocket represents the Websocket OperationClass.
const OperationClassWebsocket = "websocket"

// Operation represents a LXD background operation.
type Operation struct {
	// UUID of the operation
	// Example: 6916c8a6-9b7d-4abd-90b3-aedfec7ec7da
	ID string `json:"id" yaml:"id"`

	// Type of operation (task, token or websocket)
	// Example: task
	Class string `json:"class" yaml:"class"`

	// Description of the operation
	// Example: Stopping instance
	Description string `json:"description" yaml:"description"`

	// Operation creation time
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Operation last change
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Status name
	// Example: Running
	Status string `json:"status" yaml:"status"`

	// Status code
	// Example: 103
	StatusCode StatusCode `json:"status_code" yaml:"status_code"`

	// Affected resources
	// Example: {"instances": ["/1.0/virtual-machines/foo"]}
	Resources map[string][]string `json:"resources" yaml:"resources"`

	// Operation specific metadata
	Metadata map[string]any `json:"metadata" yaml:"metadata"`

	// Whether the operation can be canceled
	MayCancel bool `json:"may_cancel" yaml:"may_cancel"`

	// Operation error message
	// Example: Some error message
	Err string `json:"err" yaml:"err"`

	// What cluster member this record was found on
	// Example: none
	Location string `json:"location" yaml:"location"`
}
