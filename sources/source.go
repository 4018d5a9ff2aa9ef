package sources

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/config"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/utils"
)

type gridReader interface {
	ReadScanGrid(ctx context.Context) (*Grid, error)
	ReadListGrid(ctx context.Context) (*Grid, error)
}

// GridSource adapts exported framework grids to the collaborator
// interfaces.
type GridSource struct {
	reader gridReader

	translation_file string
	identity         bool

	mu   sync.Mutex
	list []*processes.ProcessRecord
}

func (self *GridSource) WithTranslationFile(filename string) *GridSource {
	self.translation_file = filename
	return self
}

func (self *GridSource) WithIdentityTranslation(identity bool) *GridSource {
	self.identity = identity
	return self
}

func (self *GridSource) ScanProcesses(
	ctx context.Context) (map[uint64]*processes.ProcessRecord, error) {
	grid, err := self.reader.ReadScanGrid(ctx)
	if err != nil {
		return nil, err
	}

	records, err := grid.Records(true)
	if err != nil {
		return nil, errors.Wrap(err, "ScanProcesses")
	}

	result := make(map[uint64]*processes.ProcessRecord)
	for _, record := range records {
		// The scan reports each block once. Ignore repeats in
		// hand edited exports.
		if _, pres := result[record.Offset]; pres {
			continue
		}
		result[record.Offset] = record
	}
	return result, nil
}

// The list is needed both to build the address space and for the
// walk so only read it once.
func (self *GridSource) listRecords(
	ctx context.Context) ([]*processes.ProcessRecord, error) {
	self.mu.Lock()
	defer self.mu.Unlock()

	if self.list != nil {
		return self.list, nil
	}

	grid, err := self.reader.ReadListGrid(ctx)
	if err != nil {
		return nil, err
	}

	records, err := grid.Records(false)
	if err != nil {
		return nil, errors.Wrap(err, "WalkProcessList")
	}

	self.list = records
	return records, nil
}

func (self *GridSource) WalkProcessList(
	ctx context.Context,
	as processes.AddressSpace) ([]*processes.ProcessRecord, error) {
	records, err := self.listRecords(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*processes.ProcessRecord, 0, len(records))
	for _, record := range records {
		result = append(result, record.Copy())
	}
	return result, nil
}

func (self *GridSource) LoadAddressSpace(
	ctx context.Context) (processes.AddressSpace, error) {
	if self.identity {
		return NewIdentityAddressSpace(), nil
	}

	table := NewTranslationTable()
	if self.translation_file != "" {
		err := LoadTranslationFile(self.translation_file, table)
		if err != nil {
			return nil, err
		}
	}

	records, err := self.listRecords(ctx)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if record.PhysicalOffset != 0 {
			table.Add(record.Offset, record.PhysicalOffset)
		}
	}

	if table.Len() == 0 && len(records) > 0 {
		return nil, utils.Wrap(utils.InvalidArgError,
			"LoadAddressSpace: list offsets can not be translated. "+
				"Export physical offsets, provide a translation file "+
				"or enable identity translation")
	}

	return table, nil
}

// NewSourceFromConfig picks the adapter described by the config.
func NewSourceFromConfig(config_obj *config.Config) (*GridSource, error) {
	sources := config_obj.Sources
	if sources == nil {
		return nil, utils.Wrap(utils.InvalidArgError, "No sources configured")
	}

	var source *GridSource
	switch {
	case sources.Database != "":
		source = NewSQLiteSource(sources.Database,
			sources.ScanTable, sources.ListTable)

	case sources.ScanFile != "" && sources.ListFile != "":
		source = NewVolatilityJSONSource(sources.ScanFile, sources.ListFile)

	default:
		return nil, utils.Wrap(utils.InvalidArgError,
			"Either a database or both scan and list files are required")
	}

	return source.WithTranslationFile(sources.TranslationFile).
		WithIdentityTranslation(sources.IdentityTranslation), nil
}
