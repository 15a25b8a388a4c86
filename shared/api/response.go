package api

import (
	"encoding/json"
)

// Response represents a LXD operation.
type Response struct {
	Type ResponseType `json:"type" yaml:"type"`

	// Valid only for Sync responses
	Status     string `json:"status" yaml:"status"`
	StatusCode int    `json:"status_code" yaml:"status_code"`

	// Valid only for Async responses
	Operation string `json:"operation" yaml:"operation"`

	// Valid only for Error responses
	Code  int    `json:"error_code" yaml:"error_code"`
	Error string `json:"error" yaml:"error"`

	// Valid for Sync and Error responses
	Metadata json.RawMessage `json:"metadata" yaml:"metadata"`
}

// IsOperation reports whether the response refers to a background operation.
func (r *Response) IsOperation() bool {
	return r.Type == AsyncResponse || StatusCode(r.StatusCode) == OperationCreated
}

// MetadataAsMap unmarshals the Response metadata into a map.
func (r *Response) MetadataAsMap() (map[string]any, error) {
	ret := map[string]any{}
	err := r.MetadataAsStruct(&ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// MetadataAsOperation turns the Response metadata into an Operation.
func (r *Response) MetadataAsOperation() (*Operation, error) {
	op := Operation{}
	err := r.MetadataAsStruct(&op)
	if err != nil {
		return nil, err
	}

	return &op, nil
}

// MetadataAsStruct unmarshals the Response metadata content.
//
// Missing or null metadata leaves target untouched.
func (r *Response) MetadataAsStruct(target any) error {
	if len(r.Metadata) == 0 {
		return nil
	}

	return json.Unmarshal(r.Metadata, &target)
}

// ResponseType represents a valid LXD response type.
type ResponseType string

// LXD response types.
const (
	SyncResponse  ResponseType = "sync"
	AsyncResponse ResponseType = "async"
	ErrorResponse ResponseType = "error"
)
