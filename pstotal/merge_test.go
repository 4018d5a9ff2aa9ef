package pstotal

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/sources"
	"www.velocidex.com/golang/pstotal/utils"
	"www.velocidex.com/golang/pstotal/vtesting"
)

type MergeTestSuite struct {
	suite.Suite

	scan map[uint64]*processes.ProcessRecord
	list []*processes.ProcessRecord
	as   *sources.TranslationTable
}

func (self *MergeTestSuite) SetupTest() {
	self.scan = vtesting.SampleScan()
	self.list = vtesting.SampleList()
	self.as = sources.NewTranslationTable()
	for vaddr, paddr := range vtesting.SampleTranslation() {
		self.as.Add(vaddr, paddr)
	}
}

func (self *MergeTestSuite) merge(options Options) *Result {
	result, err := Merge(self.scan, self.list, self.as, options)
	assert.NoError(self.T(), err)
	return result
}

func (self *MergeTestSuite) TestEveryScannedBlockIsReported() {
	result := self.merge(Options{})
	assert.Equal(self.T(), len(self.scan), result.Len())

	var offsets []uint64
	for _, entry := range result.Entries() {
		offsets = append(offsets, entry.Offset())
	}
	assert.Equal(self.T(), []uint64{
		0x1000, 0x2000, 0x3000, 0x4000, 0x5000,
		0x6000, 0x7000, 0x8000, 0x9000}, offsets)
}

func (self *MergeTestSuite) TestHiddenFlag() {
	result := self.merge(Options{})

	hidden := make(map[uint64]bool)
	for _, entry := range result.Entries() {
		hidden[entry.Offset()] = entry.Hidden
	}

	assert.Equal(self.T(), map[uint64]bool{
		0x1000: false,
		0x2000: false,
		0x3000: true,
		0x4000: true,
		0x5000: false,
		0x6000: true,
		0x7000: true,
		0x8000: true,
		0x9000: false,
	}, hidden)
}

func (self *MergeTestSuite) TestInputsAreNotModified() {
	before_scan := vtesting.SampleScan()
	before_list := vtesting.SampleList()

	self.merge(Options{})
	self.merge(Options{Short: true})

	assert.Equal(self.T(), before_scan, self.scan)
	assert.Equal(self.T(), before_list, self.list)
}

func (self *MergeTestSuite) TestShortKeepsOnlyHidden() {
	full := self.merge(Options{})
	result := self.merge(Options{Short: true})

	assert.Equal(self.T(), 5, result.Len())
	for _, entry := range result.Entries() {
		assert.True(self.T(), entry.Hidden)
	}

	// The boot anchor is listed so it is filtered, but the boot time
	// survives.
	_, pres := result.Get(0x1000)
	assert.False(self.T(), pres)
	assert.Equal(self.T(), vtesting.SampleBootTime, result.BootTime)

	// Short mode builds a new result.
	assert.Equal(self.T(), 9, full.Len())
}

func (self *MergeTestSuite) TestShortDuplicatesAreRecomputed() {
	result := self.merge(Options{Short: true})

	// The listed cmd.exe is gone so the remaining one is unique.
	entry, pres := result.Get(0x4000)
	require.True(self.T(), pres)
	assert.False(self.T(), entry.SeenTwice)
}

func (self *MergeTestSuite) TestDuplicatePids() {
	result := self.merge(Options{})

	for _, offset := range []uint64{0x4000, 0x5000} {
		entry, pres := result.Get(offset)
		require.True(self.T(), pres)
		assert.True(self.T(), entry.SeenTwice)
	}

	entry, _ := result.Get(0x3000)
	assert.False(self.T(), entry.SeenTwice)
}

func (self *MergeTestSuite) TestEnvironmentStrings() {
	result := self.merge(Options{})

	command_line, pres := result.CommandLine(0x5000)
	assert.True(self.T(), pres)
	assert.Equal(self.T(), `C:\\Windows\\system32\\cmd.exe /c echo`, command_line)

	path, pres := result.ImagePath(0x5000)
	assert.True(self.T(), pres)
	assert.Equal(self.T(), `C:\\Windows\\system32\\cmd.exe`, path)

	// Raw blocks are kept as well.
	assert.Equal(self.T(), `"C:\Windows\system32\cmd.exe" /c {echo}`,
		result.Environments[0x5000].CommandLine)

	_, pres = result.CommandLine(0x3000)
	assert.False(self.T(), pres)
}

func (self *MergeTestSuite) TestTranslationFailureIsFatal() {
	as := sources.NewTranslationTable()
	as.Add(vtesting.SampleKernelBase+0x1000, 0x1000)

	_, err := Merge(self.scan, self.list, as, Options{})
	assert.Error(self.T(), err)
	assert.True(self.T(), errors.Is(err, utils.NotFoundError))
}

func (self *MergeTestSuite) TestNoAddressSpace() {
	_, err := Merge(self.scan, self.list, nil, Options{})
	assert.True(self.T(), errors.Is(err, utils.InvalidArgError))
}

func (self *MergeTestSuite) TestUnmatchedListEntries() {
	// A listed process whose block the scan missed is not reported.
	extra := &processes.ProcessRecord{
		Offset: vtesting.SampleKernelBase + 0xa000,
		Name:   "ghost.exe",
		Pid:    1000,
	}
	self.as.Add(extra.Offset, 0xa000)
	self.list = append(self.list, extra)

	result := self.merge(Options{})
	assert.Equal(self.T(), 9, result.Len())
	_, pres := result.Get(0xa000)
	assert.False(self.T(), pres)
}

func (self *MergeTestSuite) TestEmptyInputs() {
	result, err := Merge(nil, nil, sources.NewIdentityAddressSpace(), Options{})
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), 0, result.Len())
	assert.False(self.T(), result.HasBootTime())
}

func (self *MergeTestSuite) TestCollect() {
	config_obj := vtesting.GetTestConfig(self.T())
	fixture := &sources.Fixture{
		Scan:         self.scan,
		List:         self.list,
		AddressSpace: self.as,
	}

	result, err := Collect(context.Background(), config_obj, fixture, Options{})
	assert.NoError(self.T(), err)
	assert.Equal(self.T(), 9, result.Len())

	vtesting.MemoryLogsContain(self.T(),
		"9 processes, 5 hidden from the process list")
}

func (self *MergeTestSuite) TestCollectErrors() {
	config_obj := vtesting.GetTestConfig(self.T())

	fixture := &sources.Fixture{ScanError: errors.New("smear")}
	_, err := Collect(context.Background(), config_obj, fixture, Options{})
	assert.ErrorContains(self.T(), err, "scanning for processes: smear")

	fixture = &sources.Fixture{ListError: errors.New("broken link")}
	_, err = Collect(context.Background(), config_obj, fixture, Options{})
	assert.ErrorContains(self.T(), err, "walking the process list: broken link")

	fixture = &sources.Fixture{LoadError: errors.New("no dtb")}
	_, err = Collect(context.Background(), config_obj, fixture, Options{})
	assert.ErrorContains(self.T(), err, "loading address space: no dtb")
}

func TestMerge(t *testing.T) {
	suite.Run(t, &MergeTestSuite{})
}

func entriesOf(records ...*processes.ProcessRecord) []*MergedEntry {
	var result []*MergedEntry
	for idx, r := range records {
		result = append(result, &MergedEntry{offset: uint64(idx), Record: r})
	}
	return result
}

func TestFindBootTime(t *testing.T) {
	boot := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)
	later := boot.Add(time.Minute)

	// Without a create time the System block is not an anchor.
	found, pres := FindBootTime(entriesOf(
		&processes.ProcessRecord{Name: "System", Pid: 4},
		&processes.ProcessRecord{Name: "smss.exe", Pid: 256, ParentPid: 4,
			CreateTime: later},
	))
	assert.True(t, pres)
	assert.Equal(t, later, found)

	// smss.exe must be started by System.
	_, pres = FindBootTime(entriesOf(
		&processes.ProcessRecord{Name: "smss.exe", Pid: 256, ParentPid: 300,
			CreateTime: later},
	))
	assert.False(t, pres)

	// First anchor in offset order wins.
	found, pres = FindBootTime(entriesOf(
		&processes.ProcessRecord{Name: "System", Pid: 4, CreateTime: boot},
		&processes.ProcessRecord{Name: "smss.exe", Pid: 256, ParentPid: 4,
			CreateTime: later},
	))
	assert.True(t, pres)
	assert.Equal(t, boot, found)

	_, pres = FindBootTime(nil)
	assert.False(t, pres)
}

func TestEpoch(t *testing.T) {
	scan := vtesting.SampleScan()
	as := sources.NewTranslationTable()
	for vaddr, paddr := range vtesting.SampleTranslation() {
		as.Add(vaddr, paddr)
	}

	result, err := Merge(scan, vtesting.SampleList(), as, Options{})
	require.NoError(t, err)

	epochs := make(map[uint64]string)
	for _, entry := range result.Entries() {
		epochs[entry.Offset()] = result.Epoch(entry).String()
	}

	assert.Equal(t, map[uint64]string{
		0x1000: "current",
		0x2000: "current",
		0x3000: "current",
		0x4000: "current",
		0x5000: "current",
		0x6000: "prior boot",
		0x7000: "prior boot (stale)",
		0x8000: "unknown",
		0x9000: "current",
	}, epochs)

	// The System process is never from a prior boot.
	system := &MergedEntry{Record: &processes.ProcessRecord{
		Name: "System", Pid: 4,
		CreateTime: vtesting.SampleBootTime.Add(-time.Hour),
	}}
	assert.Equal(t, EpochCurrent, result.Epoch(system))

	// Without a boot anchor nothing can be classified.
	result.BootTime = time.Time{}
	entry, _ := result.Get(0x6000)
	assert.Equal(t, EpochUnknown, result.Epoch(entry))
}

func TestStats(t *testing.T) {
	as := sources.NewTranslationTable()
	for vaddr, paddr := range vtesting.SampleTranslation() {
		as.Add(vaddr, paddr)
	}

	result, err := Merge(vtesting.SampleScan(), vtesting.SampleList(),
		as, Options{})
	require.NoError(t, err)

	assert.Equal(t, &Stats{
		Total:         9,
		Hidden:        5,
		Exited:        2,
		PriorBoot:     1,
		Stale:         1,
		DuplicatePids: 1,
		BootTime:      vtesting.SampleBootTime,
	}, result.Stats())
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, `C:\\a\\b.exe -k x`,
		SanitizeCommandLine(`"C:\a\b.exe" -k {x}`))
	assert.Equal(t, `C:\\a\\{b}.exe`,
		SanitizePath(`"C:\a\{b}.exe"`))
	assert.Equal(t, "", SanitizeCommandLine(""))
	assert.Equal(t, `evil.exe`, SanitizeName(`"evil{.exe}`))
}
