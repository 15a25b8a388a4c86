package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/canonical/multipass-lxd/vm"
)

// statusPrinter reports state changes of instances on a writer.
type statusPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

// PersistStateFor prints the new state of the instance.
func (p *statusPrinter) PersistStateFor(name string, state vm.State) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := fmt.Fprintf(p.out, "%s: %s\n", name, state)

	return err
}

// renderTable prints rows under header, dropping the borders when out isn't a terminal.
func renderTable(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	table.AppendBulk(rows)

	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		table.SetColumnSeparator("")
		table.SetHeaderLine(false)
		table.SetBorder(false)
	}

	table.Render()
}

// randomMAC returns a MAC address in the range of locally administered QEMU addresses.
func randomMAC() (string, error) {
	buf := make([]byte, 3)
	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("Failed to generate a MAC address: %w", err)
	}

	return fmt.Sprintf("52:54:00:%02x:%02x:%02x", buf[0], buf[1], buf[2]), nil
}

// existingInstance returns the instance called name, failing when the daemon doesn't know it.
func (c *cmdGlobal) existingInstance(name string) (vm.VirtualMachine, error) {
	desc, found, err := c.factory.DescriptionFor(name)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("Instance %q doesn't exist", name)
	}

	return c.factory.CreateVirtualMachine(desc, &statusPrinter{out: os.Stdout})
}
