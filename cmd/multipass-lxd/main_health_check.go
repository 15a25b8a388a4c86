package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type cmdHealthCheck struct {
	global *cmdGlobal
}

// Command returns the health-check sub-command.
func (c *cmdHealthCheck) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "health-check"
	cmd.Short = "Check LXD and set up the Multipass resources"
	cmd.Long = `Description:
  Check LXD and set up the Multipass resources

  Verifies that LXD trusts this client and is recent enough, then creates
  the project, profile and bridge used by Multipass when they are missing.
`
	cmd.RunE = c.Run

	return cmd
}

// Run executes the health check.
func (c *cmdHealthCheck) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	err = c.global.factory.HypervisorHealthCheck()
	if err != nil {
		return err
	}

	backend, err := c.global.factory.BackendVersionString()
	if err != nil {
		return err
	}

	fmt.Printf("OK (%s)\n", backend)

	return nil
}
