package lxdtest

import (
	"net/http"

	"github.com/canonical/multipass-lxd/shared/api"
)

// StopOperationID is the operation referenced by StopVMData.
const StopOperationID = "b043d632-5c48-44b3-983c-a25660d61164"

// StopVMData is the reply of the daemon to a stop request.
const StopVMData = `{
  "type": "async",
  "status": "Operation created",
  "status_code": 100,
  "operation": "/1.0/operations/b043d632-5c48-44b3-983c-a25660d61164",
  "error_code": 0,
  "error": "",
  "metadata": {
    "id": "b043d632-5c48-44b3-983c-a25660d61164",
    "class": "task",
    "description": "Stopping instance",
    "created_at": "2020-11-10T11:42:58.996868033-05:00",
    "updated_at": "2020-11-10T11:42:58.996868033-05:00",
    "status": "Running",
    "status_code": 103,
    "resources": {
      "instances": [
        "/1.0/virtual-machines/pied-piper-valley"
      ]
    },
    "metadata": null,
    "may_cancel": false,
    "err": "",
    "location": "none"
  }
}`

// WaitErrorData reports a failure through the top-level error fields of a wait reply.
const WaitErrorData = `{
  "error": "Failure",
  "error_code": 400,
  "metadata": {
    "class": "task",
    "created_at": "2020-11-10T11:42:58.996868033-05:00",
    "description": "Stopping container",
    "err": "",
    "id": "b043d632-5c48-44b3-983c-a25660d61164",
    "location": "none",
    "may_cancel": false,
    "metadata": null,
    "resources": {"containers": ["/1.0/containers/test"]},
    "status": "Success",
    "status_code": 200,
    "updated_at": "2020-11-10T11:42:58.996868033-05:00"
  },
  "operation": "",
  "status": "",
  "status_code": 0,
  "type": "sync"
}`

// WaitStatusFailureData reports a failure through the top-level status code of a wait reply.
const WaitStatusFailureData = `{
  "error": "",
  "error_code": 0,
  "metadata": {
    "class": "task",
    "created_at": "2020-11-10T11:42:58.996868033-05:00",
    "description": "Stopping container",
    "err": "",
    "id": "b043d632-5c48-44b3-983c-a25660d61164",
    "location": "none",
    "may_cancel": false,
    "metadata": null,
    "resources": {"containers": ["/1.0/containers/test"]},
    "status": "Success",
    "status_code": 200,
    "updated_at": "2020-11-10T11:42:58.996868033-05:00"
  },
  "operation": "",
  "status": "Bad status",
  "status_code": 400,
  "type": "sync"
}`

// WaitOperationFailureData reports a failure through the operation carried by a wait reply.
const WaitOperationFailureData = `{
  "error": "",
  "error_code": 0,
  "metadata": {
    "class": "task",
    "created_at": "2020-11-10T11:42:58.996868033-05:00",
    "description": "Stopping container",
    "err": "Failed to stop instance",
    "id": "b043d632-5c48-44b3-983c-a25660d61164",
    "location": "none",
    "may_cancel": false,
    "metadata": null,
    "resources": {"containers": ["/1.0/containers/test"]},
    "status": "Failure",
    "status_code": 400,
    "updated_at": "2020-11-10T11:42:58.996868033-05:00"
  },
  "operation": "",
  "status": "Success",
  "status_code": 0,
  "type": "sync"
}`

// NetworksRealisticData lists bridges alongside other kinds of networks.
const NetworksRealisticData = `{
  "type": "sync",
  "status": "Success",
  "status_code": 200,
  "operation": "",
  "error_code": 0,
  "error": "",
  "metadata": [
    {"config": {"ipv4.address": "10.20.30.1/24"}, "description": "", "name": "lxdbr0", "type": "bridge", "managed": true, "status": "Created"},
    {"config": {}, "description": "", "name": "eth0", "type": "physical", "managed": false, "status": ""},
    {"config": {"ipv4.address": "10.217.27.1/24"}, "description": "Network bridge for Multipass", "name": "mpbr0", "type": "bridge", "managed": true, "status": "Created"},
    {"config": {}, "description": "", "name": "virbr0", "type": "bridge", "managed": false, "status": ""},
    {"config": {}, "description": "", "name": "lo", "type": "loopback", "managed": false, "status": ""},
    {"config": {}, "description": "", "name": "mpqemubr0", "type": "bridge", "managed": false, "status": ""},
    {"config": {}, "description": "", "name": "wlan0", "type": "physical", "managed": false, "status": ""}
  ]
}`

// NetworksFaultyData mixes the bridges of NetworksRealisticData with malformed entries.
const NetworksFaultyData = `{
  "type": "sync",
  "status": "Success",
  "status_code": 200,
  "metadata": [
    {"name": "lxdbr0", "type": "bridge"},
    "not an object",
    {"name": "mpbr0", "type": "bridge", "description": "Network bridge for Multipass"},
    {"name": 42, "type": "bridge"},
    {"name": "virbr0", "type": "bridge", "description": ""},
    {"type": "bridge", "description": "nameless"},
    {"name": "", "type": "bridge"},
    {"name": "eth1", "type": 7},
    {"name": "mpqemubr0", "type": "bridge", "managed": false},
    {"name": "enp3s0", "type": "physical"},
    ["lxdbr1", "bridge"],
    {"name": "br-untyped"}
  ]
}`

// ServerInfo returns the root endpoint metadata of a daemon.
func ServerInfo(auth string, version string) api.Server {
	return api.Server{
		ServerUntrusted: api.ServerUntrusted{
			APIStatus:   "stable",
			APIVersion:  "1.0",
			Auth:        auth,
			AuthMethods: []string{"tls"},
		},
		Config: map[string]any{},
		Environment: api.ServerEnvironment{
			ServerVersion: version,
		},
	}
}

// InstanceState returns the state of a virtual machine.
func InstanceState(code api.StatusCode, processes int64) api.InstanceState {
	return api.InstanceState{
		Status:     code.String(),
		StatusCode: code,
		Processes:  processes,
	}
}

// Lease returns a DHCP lease for a virtual machine.
func Lease(hostname string, hwaddr string, address string) api.NetworkLease {
	return api.NetworkLease{
		Hostname: hostname,
		Hwaddr:   hwaddr,
		Address:  address,
		Type:     "dynamic",
		Location: "none",
	}
}

// Sync returns a handler always answering metadata.
func Sync(metadata any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteSync(w, metadata)
	}
}

// Raw returns a handler always answering body with a 200 status.
func Raw(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteRaw(w, http.StatusOK, body)
	}
}
