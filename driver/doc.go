// Package driver implements the LXD backend of the virtualization layer.
//
// Instances are LXD virtual machines living in a dedicated project and
// attached to a managed bridge. The daemon owns disk images and instance
// resources, so the backend only drives state changes and reports what
// the daemon observes.
package driver
