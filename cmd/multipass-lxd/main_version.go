package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/multipass-lxd/shared/version"
)

type cmdVersion struct {
	global *cmdGlobal
}

// Command returns the version sub-command.
func (c *cmdVersion) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "version"
	cmd.Short = "Show the version and user agent"
	cmd.RunE = c.Run

	return cmd
}

// Run prints the version.
func (c *cmdVersion) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	fmt.Println(version.Version)
	fmt.Println(version.UserAgent)

	return nil
}
