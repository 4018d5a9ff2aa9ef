package pstotal

import (
	"time"

	"github.com/google/btree"
	"www.velocidex.com/golang/pstotal/processes"
)

// A process block from the pool scan, annotated with what the list
// walk told us about it.
type MergedEntry struct {
	offset uint64

	Record *processes.ProcessRecord

	// Set when the list walk could not reach this block.
	Hidden bool

	// Another block in the result carries the same pid.
	SeenTwice bool
}

// The physical offset this entry was found at.
func (self *MergedEntry) Offset() uint64 {
	return self.offset
}

func lessByOffset(a, b *MergedEntry) bool {
	return a.offset < b.offset
}

// The merged report. Entries are kept ordered by physical offset so
// every renderer iterates them in the same order.
type Result struct {
	entries *btree.BTreeG[*MergedEntry]

	// Sanitized environment strings keyed by physical offset. Only
	// processes reachable through the list have these.
	CommandLines map[uint64]string
	ImagePaths   map[uint64]string

	// The unmodified environment blocks keyed by physical offset.
	Environments map[uint64]*processes.EnvironmentBlock

	// Zero when no boot anchor was found.
	BootTime time.Time
}

func newResult() *Result {
	return &Result{
		entries:      btree.NewG[*MergedEntry](16, lessByOffset),
		CommandLines: make(map[uint64]string),
		ImagePaths:   make(map[uint64]string),
		Environments: make(map[uint64]*processes.EnvironmentBlock),
	}
}

func (self *Result) add(entry *MergedEntry) {
	self.entries.ReplaceOrInsert(entry)
}

func (self *Result) Get(offset uint64) (*MergedEntry, bool) {
	return self.entries.Get(&MergedEntry{offset: offset})
}

func (self *Result) Len() int {
	return self.entries.Len()
}

// Entries returns all entries in ascending offset order.
func (self *Result) Entries() []*MergedEntry {
	result := make([]*MergedEntry, 0, self.entries.Len())
	self.entries.Ascend(func(item *MergedEntry) bool {
		result = append(result, item)
		return true
	})
	return result
}

func (self *Result) HasBootTime() bool {
	return !self.BootTime.IsZero()
}

func (self *Result) CommandLine(offset uint64) (string, bool) {
	value, pres := self.CommandLines[offset]
	return value, pres
}

func (self *Result) ImagePath(offset uint64) (string, bool) {
	value, pres := self.ImagePaths[offset]
	return value, pres
}

// Build a new result holding only the blocks the list walk could not
// reach. The receiver is left untouched.
func (self *Result) hiddenOnly() *Result {
	result := newResult()
	result.BootTime = self.BootTime

	self.entries.Ascend(func(item *MergedEntry) bool {
		if item.Hidden {
			hidden := *item
			result.add(&hidden)
		}
		return true
	})

	for k, v := range self.CommandLines {
		result.CommandLines[k] = v
	}
	for k, v := range self.ImagePaths {
		result.ImagePaths[k] = v
	}
	for k, v := range self.Environments {
		result.Environments[k] = v
	}

	return result
}

func (self *Result) markDuplicates() {
	pids := make(map[int64]int)
	self.entries.Ascend(func(item *MergedEntry) bool {
		pids[item.Record.Pid]++
		return true
	})

	self.entries.Ascend(func(item *MergedEntry) bool {
		item.SeenTwice = pids[item.Record.Pid] > 1
		return true
	})
}
