package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/devices"
)

var devicesFlags = []cli.Flag{
	&cli.StringFlag{Name: "devices-csv", Usage: "device table replacing the built-in one"},
	&cli.IntFlag{Name: "pages", Usage: "only list devices with room for this many pages"},
}

func listDevices(c *cli.Context) error {
	table := devices.Predefined()
	if path := c.String("devices-csv"); path != "" {
		var err error
		table, err = devices.LoadFile(path)
		if err != nil {
			return err
		}
	}
	if c.IsSet("pages") {
		table = devices.Compatible(table, c.Int("pages"))
	}

	writer := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "SLUG\tNAME\tFREE PAGES\tNOTES")
	for _, device := range table {
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\n", device.Slug, device.Name, device.FreePages, device.Notes)
	}
	return writer.Flush()
}
