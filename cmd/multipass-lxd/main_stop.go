package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type cmdStop struct {
	global *cmdGlobal

	flagParallel int
}

// Command returns the stop sub-command.
func (c *cmdStop) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "stop <name>..."
	cmd.Short = "Stop instances"
	cmd.RunE = c.Run
	cmd.Flags().IntVarP(&c.flagParallel, "parallel", "P", 4, "Number of instances to stop at once"+"``")

	return cmd
}

// Run stops the instances in parallel.
func (c *cmdStop) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 1, -1)
	if exit {
		return err
	}

	g := errgroup.Group{}
	if c.flagParallel > 0 {
		g.SetLimit(c.flagParallel)
	}

	for _, name := range args {
		g.Go(func() error {
			instance, err := c.global.existingInstance(name)
			if err != nil {
				return err
			}

			return instance.Shutdown()
		})
	}

	return g.Wait()
}
