// Package vm defines the virtualization abstraction hypervisor backends implement.
package vm
