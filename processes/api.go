package processes

import (
	"context"
)

// Translates virtual addresses in the kernel address space to
// physical offsets in the memory image.
type AddressSpace interface {
	VirtualToPhysical(vaddr uint64) (uint64, error)
}

// A brute force pool scan for process blocks. The result is keyed by
// physical offset.
type Scanner interface {
	ScanProcesses(ctx context.Context) (map[uint64]*ProcessRecord, error)
}

// Walks the active process list. Records carry virtual offsets in
// the address space.
type Walker interface {
	WalkProcessList(
		ctx context.Context, as AddressSpace) ([]*ProcessRecord, error)
}

type AddressSpaceLoader interface {
	LoadAddressSpace(ctx context.Context) (AddressSpace, error)
}

// Everything the framework needs to provide for a report.
type Source interface {
	Scanner
	Walker
	AddressSpaceLoader
}
