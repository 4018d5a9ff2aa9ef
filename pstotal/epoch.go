package pstotal

import (
	"www.velocidex.com/golang/pstotal/processes"
)

// Where a process sits relative to the current boot.
type Epoch int

const (
	// No boot anchor, or no create time on the record.
	EpochUnknown Epoch = iota

	EpochCurrent

	// Created before the current boot and either still marked as
	// running or exited before the boot.
	EpochPriorBoot

	// Created before the current boot but exited after it. The block
	// outlived the reboot.
	EpochPriorBootStale
)

func (self Epoch) String() string {
	switch self {
	case EpochCurrent:
		return "current"
	case EpochPriorBoot:
		return "prior boot"
	case EpochPriorBootStale:
		return "prior boot (stale)"
	default:
		return "unknown"
	}
}

func (self Epoch) IsPriorBoot() bool {
	return self == EpochPriorBoot || self == EpochPriorBootStale
}

// Timestamps are compared as is. A garbage create time in a scanned
// block will misclassify that block.
func (self *Result) Epoch(entry *MergedEntry) Epoch {
	record := entry.Record
	if !self.HasBootTime() || !record.HasCreateTime() {
		return EpochUnknown
	}

	if record.Pid == processes.SystemPid ||
		!record.CreateTime.Before(self.BootTime) {
		return EpochCurrent
	}

	if record.HasExited() && record.ExitTime.After(self.BootTime) {
		return EpochPriorBootStale
	}

	return EpochPriorBoot
}
