package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type cmdIP struct {
	global *cmdGlobal

	flagTimeout time.Duration
}

// Command returns the ip sub-command.
func (c *cmdIP) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "ip <name>"
	cmd.Short = "Wait for the address of an instance"
	cmd.RunE = c.Run
	cmd.Flags().DurationVar(&c.flagTimeout, "timeout", 2*time.Minute, "How long to wait for a DHCP lease"+"``")

	return cmd
}

// Run prints the address an instance can be reached over SSH at.
func (c *cmdIP) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 1, 1)
	if exit {
		return err
	}

	instance, err := c.global.existingInstance(args[0])
	if err != nil {
		return err
	}

	address, err := instance.SSHHostname(c.flagTimeout)
	if err != nil {
		return err
	}

	fmt.Printf("%s:%d\n", address, instance.SSHPort())

	return nil
}
