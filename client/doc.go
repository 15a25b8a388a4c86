// Package lxd implements a client for the LXD API over a local Unix socket.
//
// Overview
//
// The daemon models every long running action (instance creation, start,
// stop, image import) as a background operation. ProtocolLXD turns those
// into synchronous calls: RawQuery sends a request and classifies the reply,
// Wait then long-polls the operation until it reaches a final state.
//
// Example - starting an instance
//
//  c, err := lxd.ConnectLXDUnix("", nil)
//  if err != nil {
//    return err
//  }
//
//  err = c.UpdateInstanceState("pied-piper-valley", api.InstanceStatePut{Action: "start"}, time.Minute)
//  if err != nil {
//    return err
//  }
//
// Errors
//
// Failures are reported as *ConnectionError (daemon unreachable),
// *TimeoutError (no reply in time) or *ProtocolError (malformed reply,
// HTTP-level failure or failed operation). A ProtocolError caused by an
// HTTP status wraps an *api.StatusError, so api.StatusErrorCheck(err, 404)
// detects missing resources.
package lxd
