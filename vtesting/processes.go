package vtesting

import (
	"time"

	"www.velocidex.com/golang/pstotal/processes"
)

// Virtual addresses of list entries are the physical offset plus
// this base.
const SampleKernelBase = uint64(0xfffffa8000000000)

var SampleBootTime = time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)

func at(day, hour, min, sec int) time.Time {
	return time.Date(2014, 3, day, hour, min, sec, 0, time.UTC)
}

func record(offset uint64, name string, pid, ppid int64,
	created, exited time.Time) *processes.ProcessRecord {
	return &processes.ProcessRecord{
		Offset:         offset,
		PhysicalOffset: offset,
		Name:           name,
		Pid:            pid,
		ParentPid:      ppid,
		PageTableBase:  offset << 8,
		CreateTime:     created,
		ExitTime:       exited,
	}
}

// SampleScan is a small image: a booted system with one hidden
// process, an exited duplicate pid, leftovers from the previous boot
// and a block without a create time.
func SampleScan() map[uint64]*processes.ProcessRecord {
	prior := time.Date(2014, 2, 28, 9, 0, 0, 0, time.UTC)
	none := time.Time{}

	result := make(map[uint64]*processes.ProcessRecord)
	for _, r := range []*processes.ProcessRecord{
		record(0x1000, "System", 4, 0, at(1, 10, 0, 0), none),
		record(0x2000, "smss.exe", 256, 4, at(1, 10, 0, 5), none),
		record(0x3000, "evil.exe", 666, 256, at(1, 11, 0, 0), none),
		record(0x4000, "cmd.exe", 1234, 256, at(1, 10, 30, 0), at(1, 10, 45, 0)),
		record(0x5000, "cmd.exe", 1234, 256, at(1, 12, 0, 0), none),
		record(0x6000, "old.exe", 900, 4, prior, none),
		record(0x7000, "stale.exe", 901, 4, prior, at(1, 10, 10, 0)),
		record(0x8000, "nodate.exe", 902, 4, none, none),
		record(0x9000, "csrss.exe", 400, 256, at(1, 10, 0, 10), none),
	} {
		result[r.Offset] = r
	}
	return result
}

// SampleList is the process list walk for SampleScan. Offsets are
// virtual.
func SampleList() []*processes.ProcessRecord {
	scan := SampleScan()

	listed := func(phys uint64, command_line, image_path string) *processes.ProcessRecord {
		r := scan[phys].Copy()
		r.Offset = SampleKernelBase + phys
		if command_line != "" || image_path != "" {
			r.Environment = &processes.EnvironmentBlock{
				CommandLine: command_line,
				ImagePath:   image_path,
			}
		}
		return r
	}

	return []*processes.ProcessRecord{
		listed(0x1000, "", ""),
		listed(0x2000, `\SystemRoot\System32\smss.exe`,
			`\SystemRoot\System32\smss.exe`),
		listed(0x5000, `"C:\Windows\system32\cmd.exe" /c {echo}`,
			`C:\Windows\system32\cmd.exe`),
		listed(0x9000, `%SystemRoot%\system32\csrss.exe ObjectDirectory=\Windows`,
			`C:\Windows\system32\csrss.exe`),
	}
}

// SampleTranslation maps each listed virtual address to its physical
// offset.
func SampleTranslation() map[uint64]uint64 {
	result := make(map[uint64]uint64)
	for _, r := range SampleList() {
		result[r.Offset] = r.Offset - SampleKernelBase
	}
	return result
}
