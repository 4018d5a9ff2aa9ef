package sources

import (
	"context"

	"www.velocidex.com/golang/pstotal/processes"
)

// An in memory source. Useful when embedding pstotal into a tool
// that already holds the framework results.
type Fixture struct {
	Scan         map[uint64]*processes.ProcessRecord
	List         []*processes.ProcessRecord
	AddressSpace processes.AddressSpace

	// Errors to return from each collaborator.
	ScanError error
	ListError error
	LoadError error
}

func (self *Fixture) ScanProcesses(
	ctx context.Context) (map[uint64]*processes.ProcessRecord, error) {
	if self.ScanError != nil {
		return nil, self.ScanError
	}
	return self.Scan, nil
}

func (self *Fixture) WalkProcessList(
	ctx context.Context,
	as processes.AddressSpace) ([]*processes.ProcessRecord, error) {
	if self.ListError != nil {
		return nil, self.ListError
	}
	return self.List, nil
}

func (self *Fixture) LoadAddressSpace(
	ctx context.Context) (processes.AddressSpace, error) {
	if self.LoadError != nil {
		return nil, self.LoadError
	}
	if self.AddressSpace == nil {
		return NewIdentityAddressSpace(), nil
	}
	return self.AddressSpace, nil
}
