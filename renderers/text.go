package renderers

import (
	"fmt"
	"io"
	"strings"

	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/pstotal"
	"www.velocidex.com/golang/pstotal/utils"
)

// A fixed width column. Negative widths are right aligned.
type column struct {
	header string
	width  int
}

func addressWidth(bits int) int {
	if bits == 32 {
		return 10
	}
	return 18
}

func formatAddress(value uint64, bits int) string {
	return fmt.Sprintf("0x%0*x", addressWidth(bits)-2, value)
}

func textColumns(bits int) []column {
	return []column{
		{"Offset(V)", addressWidth(bits)},
		{"Name", 16},
		{"PID", -6},
		{"PPID", -6},
		{"PDB", addressWidth(bits)},
		{"Time created", 30},
		{"Time exited", 30},
		{"Interesting", 11},
	}
}

func formatLine(columns []column, values []string) string {
	cells := make([]string, 0, len(columns))
	for idx, c := range columns {
		cells = append(cells, utils.Pad(values[idx], c.width))
	}
	return strings.Join(cells, " ") + "\n"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// RenderText writes one row per entry in offset order. The cmd and
// path options do not apply to the table.
func RenderText(out io.Writer, result *pstotal.Result, options Options) error {
	columns := textColumns(options.AddressBits)

	headers := make([]string, 0, len(columns))
	separators := make([]string, 0, len(columns))
	for _, c := range columns {
		headers = append(headers, c.header)
		separators = append(separators, strings.Repeat("-", abs(c.width)))
	}

	_, err := io.WriteString(out, formatLine(columns, headers))
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, formatLine(columns, separators))
	if err != nil {
		return err
	}

	for _, entry := range result.Entries() {
		record := entry.Record
		interesting := ""
		if entry.Hidden {
			interesting = "True"
		}

		_, err = io.WriteString(out, formatLine(columns, []string{
			formatAddress(entry.Offset(), options.AddressBits),
			record.Name,
			fmt.Sprintf("%d", record.Pid),
			fmt.Sprintf("%d", record.ParentPid),
			formatAddress(record.PageTableBase, options.AddressBits),
			processes.FormatTime(record.CreateTime),
			processes.FormatTime(record.ExitTime),
			interesting,
		}))
		if err != nil {
			return err
		}
	}

	return nil
}
