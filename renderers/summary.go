package renderers

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/pstotal"
)

func RenderSummary(out io.Writer, result *pstotal.Result, options Options) error {
	stats := result.Stats()

	boot_time := "unknown"
	if result.HasBootTime() {
		boot_time = processes.FormatTime(stats.BootTime)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Measure", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.AppendBulk([][]string{
		{"Boot time", boot_time},
		{"Processes", fmt.Sprintf("%d", stats.Total)},
		{"Hidden from process list", fmt.Sprintf("%d", stats.Hidden)},
		{"Exited", fmt.Sprintf("%d", stats.Exited)},
		{"Prior boot", fmt.Sprintf("%d", stats.PriorBoot)},
		{"Prior boot exited after boot", fmt.Sprintf("%d", stats.Stale)},
		{"Duplicate pids", fmt.Sprintf("%d", stats.DuplicatePids)},
	})
	table.Render()

	return nil
}
