package lxd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
)

// operationPollInterval is the pause between two wait requests for an operation that isn't done yet.
const operationPollInterval = 100 * time.Millisecond

// Wait blocks until the operation referenced by resp reaches a final state, or until timeout.
//
// Responses that don't refer to an operation are returned as is. The operation is
// long-polled at <baseURL>/operations/<id>/wait and the final wait reply is returned.
func (r *ProtocolLXD) Wait(ctx context.Context, baseURL string, resp *api.Response, timeout time.Duration) (*api.Response, error) {
	if !resp.IsOperation() {
		return resp, nil
	}

	l := logger.AddContext(logger.Ctx{"category": requestCategory})

	id, err := operationID(resp)
	if err != nil {
		l.Error(err.Error())
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			err := &TimeoutError{URL: fmt.Sprintf("operation %s", id)}
			l.Error(err.Error())
			return nil, err
		}

		waitResp, err := r.GetOperationWait(ctx, baseURL, id, remaining)
		if err != nil {
			// The daemon forgets about operations shortly after they complete.
			if api.StatusErrorCheck(err, http.StatusNotFound) {
				l.Debug("Operation is gone, assuming it completed", logger.Ctx{"operation": id})
				return resp, nil
			}

			return nil, err
		}

		op, err := checkOperationReply(waitResp)
		if err != nil {
			l.Error(err.Error())
			return nil, err
		}

		if op.StatusCode.IsFinal() {
			return waitResp, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(min(operationPollInterval, time.Until(deadline))):
		}
	}
}

// GetOperationWait returns the reply of the daemon after waiting at most timeout for the operation.
func (r *ProtocolLXD) GetOperationWait(ctx context.Context, baseURL string, id string, timeout time.Duration) (*api.Response, error) {
	// The daemon only takes whole seconds.
	seconds := int(timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	url := fmt.Sprintf("%s/operations/%s/wait?timeout=%d", baseURL, id, seconds)

	return r.RawQuery(ctx, http.MethodGet, url, nil, timeout)
}

// checkOperationReply maps the three places a failed operation can be reported at to distinct errors.
func checkOperationReply(resp *api.Response) (*api.Operation, error) {
	if resp.Code != 0 || resp.Error != "" {
		return nil, &ProtocolError{msg: fmt.Sprintf("Error waiting on operation: (%d) %s", resp.Code, resp.Error)}
	}

	if api.StatusCode(resp.StatusCode).IsFailure() {
		return nil, &ProtocolError{msg: fmt.Sprintf("Failure waiting on operation: (%d) %s", resp.StatusCode, resp.Status)}
	}

	op, err := resp.MetadataAsOperation()
	if err != nil {
		return nil, &ProtocolError{msg: fmt.Sprintf("Invalid operation metadata: %v", err), err: err}
	}

	if op.StatusCode.IsFailure() || op.Err != "" {
		return nil, &ProtocolError{msg: fmt.Sprintf("Operation completed with error: (%d) %s", op.StatusCode, op.Err)}
	}

	return op, nil
}

// operationID extracts the UUID of the operation a response refers to.
func operationID(resp *api.Response) (string, error) {
	meta := struct {
		ID string `json:"id"`
	}{}

	if len(resp.Metadata) > 0 {
		_ = json.Unmarshal(resp.Metadata, &meta)
	}

	id := meta.ID
	if id == "" && resp.Operation != "" {
		id = path.Base(resp.Operation)
	}

	_, err := uuid.Parse(id)
	if err != nil {
		return "", &ProtocolError{URL: resp.Operation, msg: fmt.Sprintf("Invalid operation ID %q: %v", id, err), err: err}
	}

	return id, nil
}
