package pstotal

import "time"

type Stats struct {
	Total         int
	Hidden        int
	Exited        int
	PriorBoot     int
	Stale         int
	DuplicatePids int
	BootTime      time.Time
}

func (self *Result) Stats() *Stats {
	result := &Stats{
		BootTime: self.BootTime,
	}

	pids := make(map[int64]bool)
	for _, entry := range self.Entries() {
		result.Total++
		if entry.Hidden {
			result.Hidden++
		}
		if entry.Record.HasExited() {
			result.Exited++
		}

		switch self.Epoch(entry) {
		case EpochPriorBoot:
			result.PriorBoot++
		case EpochPriorBootStale:
			result.Stale++
		}

		if entry.SeenTwice {
			pids[entry.Record.Pid] = true
		}
	}
	result.DuplicatePids = len(pids)

	return result
}
