package main

import (
	"os"

	"github.com/spf13/cobra"
)

type cmdState struct {
	global *cmdGlobal
}

// Command returns the state sub-command.
func (c *cmdState) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "state <name>..."
	cmd.Short = "Show the state of instances"
	cmd.RunE = c.Run

	return cmd
}

// Run prints the state and management address of each instance.
func (c *cmdState) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 1, -1)
	if exit {
		return err
	}

	rows := make([][]string, 0, len(args))
	for _, name := range args {
		instance, err := c.global.existingInstance(name)
		if err != nil {
			return err
		}

		rows = append(rows, []string{name, instance.CurrentState().String(), instance.ManagementIPv4()})
	}

	renderTable(os.Stdout, []string{"NAME", "STATE", "IPV4"}, rows)

	return nil
}
