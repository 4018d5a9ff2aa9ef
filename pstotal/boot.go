package pstotal

import (
	"strings"
	"time"

	"www.velocidex.com/golang/pstotal/processes"
)

const (
	SystemProcessName  = "System"
	SessionManagerName = "smss.exe"
)

// Is this record a reliable marker for when the current boot
// started? The System process carries the boot time itself. The
// session manager is started by System very early on.
func isBootAnchor(record *processes.ProcessRecord) bool {
	if !record.HasCreateTime() {
		return false
	}

	if strings.HasPrefix(record.Name, SystemProcessName) {
		return true
	}

	return strings.HasPrefix(record.Name, SessionManagerName) &&
		record.ParentPid == processes.SystemPid
}

// FindBootTime returns the create time of the first boot anchor in
// entry order.
func FindBootTime(entries []*MergedEntry) (time.Time, bool) {
	for _, entry := range entries {
		if isBootAnchor(entry.Record) {
			return entry.Record.CreateTime, true
		}
	}
	return time.Time{}, false
}
