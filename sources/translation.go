package sources

import (
	"io/ioutil"
	"strconv"
	"sync"

	"github.com/Velocidex/yaml/v2"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/utils"
)

// An address space backed by a lookup table. We never walk page
// tables ourselves - the framework resolves addresses and exports
// the mapping.
type TranslationTable struct {
	mu       sync.Mutex
	table    map[uint64]uint64
	identity bool
}

func NewTranslationTable() *TranslationTable {
	return &TranslationTable{
		table: make(map[uint64]uint64),
	}
}

// For exports where list offsets are already physical.
func NewIdentityAddressSpace() *TranslationTable {
	return &TranslationTable{
		table:    make(map[uint64]uint64),
		identity: true,
	}
}

func (self *TranslationTable) Add(vaddr, paddr uint64) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.table[vaddr] = paddr
}

func (self *TranslationTable) Len() int {
	self.mu.Lock()
	defer self.mu.Unlock()

	return len(self.table)
}

func (self *TranslationTable) VirtualToPhysical(vaddr uint64) (uint64, error) {
	if self.identity {
		return vaddr, nil
	}

	self.mu.Lock()
	defer self.mu.Unlock()

	paddr, pres := self.table[vaddr]
	if !pres {
		return 0, utils.Wrap(utils.NotFoundError,
			"VirtualToPhysical: %#x is not mapped", vaddr)
	}
	return paddr, nil
}

// Load a mapping of virtual to physical addresses. The file is a
// YAML (or JSON) object, keys and values may be hex or decimal:
//
//	0x81f2c020: 0x01f2c020
func LoadTranslationFile(filename string, table *TranslationTable) error {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "LoadTranslationFile")
	}

	mapping := make(map[string]string)
	err = yaml.Unmarshal(data, &mapping)
	if err != nil {
		return errors.Wrapf(err, "LoadTranslationFile: %v", filename)
	}

	for k, v := range mapping {
		vaddr, err := strconv.ParseUint(k, 0, 64)
		if err != nil {
			return errors.Wrapf(err, "LoadTranslationFile: virtual address %q", k)
		}

		paddr, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return errors.Wrapf(err, "LoadTranslationFile: physical address %q", v)
		}

		table.Add(vaddr, paddr)
	}

	return nil
}
