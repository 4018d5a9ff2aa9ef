package renderers

import (
	"io"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/pstotal/json"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/pstotal"
)

func timeOrNil(record_time string) interface{} {
	if record_time == "" {
		return nil
	}
	return record_time
}

// EntryRow is the row representation shared by the JSONL output and
// the VQL plugin.
func EntryRow(result *pstotal.Result, entry *pstotal.MergedEntry) *ordereddict.Dict {
	record := entry.Record

	var command_line, image_path interface{}
	env, pres := result.Environments[entry.Offset()]
	if pres {
		command_line = env.CommandLine
		image_path = env.ImagePath
	}

	return ordereddict.NewDict().
		Set("Offset", entry.Offset()).
		Set("Name", record.Name).
		Set("PID", record.Pid).
		Set("PPID", record.ParentPid).
		Set("PDB", record.PageTableBase).
		Set("CreateTime", timeOrNil(processes.FormatTime(record.CreateTime))).
		Set("ExitTime", timeOrNil(processes.FormatTime(record.ExitTime))).
		Set("Interesting", entry.Hidden).
		Set("SeenTwice", entry.SeenTwice).
		Set("Epoch", result.Epoch(entry).String()).
		Set("CommandLine", command_line).
		Set("ImagePath", image_path)
}

func RenderJsonl(out io.Writer, result *pstotal.Result, options Options) error {
	for _, entry := range result.Entries() {
		err := json.WriteJsonl(out, EntryRow(result, entry))
		if err != nil {
			return err
		}
	}
	return nil
}
