package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/aaalloc/sviet/tracer/wgpu"
)

// List the available gpu adapters.
func ListAdapters(ctx *cli.Context) error {
	setupLogging(ctx)

	adapters := wgpu.EnumerateAdapters()
	if len(adapters) == 0 {
		return fmt.Errorf("no gpu adapters available")
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Name", "Type", "Backend", "Driver"})
	for index, adapter := range adapters {
		table.Append([]string{
			fmt.Sprintf("%02d", index),
			adapter.Name,
			adapter.Type,
			adapter.Backend,
			adapter.Driver,
		})
	}
	table.Render()

	logger.Noticef("system provides %d gpu adapter(s)\n%s", len(adapters), buf.String())
	return nil
}
