package main

import (
	"time"

	"github.com/spf13/cobra"
)

type cmdStart struct {
	global *cmdGlobal

	flagTimeout time.Duration
}

// Command returns the start sub-command.
func (c *cmdStart) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "start <name>..."
	cmd.Short = "Start instances"
	cmd.RunE = c.Run
	cmd.Flags().DurationVar(&c.flagTimeout, "boot-grace", 5*time.Second, "How long an instance must stay up to count as started"+"``")

	return cmd
}

// Run starts the instances one after the other.
func (c *cmdStart) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 1, -1)
	if exit {
		return err
	}

	for _, name := range args {
		instance, err := c.global.existingInstance(name)
		if err != nil {
			return err
		}

		err = instance.Start()
		if err != nil {
			return err
		}

		err = instance.EnsureRunning(c.flagTimeout)
		if err != nil {
			return err
		}
	}

	return nil
}
