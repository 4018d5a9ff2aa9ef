package renderers

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Velocidex/ordereddict"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"www.velocidex.com/golang/pstotal/config"
	"www.velocidex.com/golang/pstotal/json"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/pstotal"
	"www.velocidex.com/golang/pstotal/sources"
	"www.velocidex.com/golang/pstotal/vtesting"
	"www.velocidex.com/golang/pstotal/vtesting/goldie"
)

func sampleResult(t *testing.T, options pstotal.Options) *pstotal.Result {
	as := sources.NewTranslationTable()
	for vaddr, paddr := range vtesting.SampleTranslation() {
		as.Add(vaddr, paddr)
	}

	result, err := pstotal.Merge(vtesting.SampleScan(),
		vtesting.SampleList(), as, options)
	require.NoError(t, err)
	return result
}

func gaugeValues(families []*dto.MetricFamily) map[string]float64 {
	result := make(map[string]float64)
	for _, family := range families {
		result[family.GetName()] = family.GetMetric()[0].GetGauge().GetValue()
	}
	return result
}

type RendererTestSuite struct {
	suite.Suite

	result *pstotal.Result
}

func (self *RendererTestSuite) SetupTest() {
	self.result = sampleResult(self.T(), pstotal.Options{})
}

func (self *RendererTestSuite) render(format Format, options Options) string {
	out := &bytes.Buffer{}
	err := Render(out, self.result, format, options)
	assert.NoError(self.T(), err)
	return out.String()
}

func (self *RendererTestSuite) TestTextSample() {
	goldie.Assert(self.T(), "TestTextSample",
		[]byte(self.render(FormatText, Options{AddressBits: 64})))
}

func (self *RendererTestSuite) TestDotSample() {
	goldie.Assert(self.T(), "TestDotSample",
		[]byte(self.render(FormatDot, Options{
			Cmd: true, Path: true, AddressBits: 64})))
}

func (self *RendererTestSuite) TestDotNoEnvironment() {
	goldie.Assert(self.T(), "TestDotNoEnvironment",
		[]byte(self.render(FormatDot, Options{AddressBits: 64})))
}

func (self *RendererTestSuite) TestDotIsRepeatable() {
	options := Options{Cmd: true, AddressBits: 64}
	assert.Equal(self.T(),
		self.render(FormatDot, options), self.render(FormatDot, options))
}

func (self *RendererTestSuite) TestJsonl() {
	lines := strings.Split(strings.TrimSpace(
		self.render(FormatJsonl, Options{})), "\n")
	require.Equal(self.T(), 9, len(lines))

	assert.Equal(self.T(), `{"Offset":4096,"Name":"System","PID":4,"PPID":0,`+
		`"PDB":1048576,"CreateTime":"2014-03-01 10:00:00 UTC+0000",`+
		`"ExitTime":null,"Interesting":false,"SeenTwice":false,`+
		`"Epoch":"current","CommandLine":null,"ImagePath":null}`, lines[0])

	row := ordereddict.NewDict()
	require.NoError(self.T(), json.Unmarshal([]byte(lines[4]), row))
	command_line, _ := row.GetString("CommandLine")
	assert.Equal(self.T(), `"C:\Windows\system32\cmd.exe" /c {echo}`, command_line)
	epoch, _ := row.GetString("Epoch")
	assert.Equal(self.T(), "current", epoch)

	row = ordereddict.NewDict()
	require.NoError(self.T(), json.Unmarshal([]byte(lines[6]), row))
	epoch, _ = row.GetString("Epoch")
	assert.Equal(self.T(), "prior boot (stale)", epoch)
}

func (self *RendererTestSuite) TestSummary() {
	out := self.render(FormatSummary, Options{})
	for _, expected := range []string{
		"2014-03-01 10:00:00 UTC+0000",
		"Hidden from process list",
		"Prior boot exited after boot",
		"Duplicate pids",
	} {
		assert.Contains(self.T(), out, expected)
	}
}

func (self *RendererTestSuite) TestMetrics() {
	registry := NewMetricsRegistry(self.result)
	families, err := registry.Gather()
	require.NoError(self.T(), err)

	values := gaugeValues(families)

	assert.Equal(self.T(), map[string]float64{
		"pstotal_processes":            9,
		"pstotal_hidden_processes":     5,
		"pstotal_exited_processes":     2,
		"pstotal_prior_boot_processes": 1,
		"pstotal_stale_processes":      1,
		"pstotal_duplicate_pids":       1,
		"pstotal_boot_time_seconds":    float64(vtesting.SampleBootTime.Unix()),
	}, values)

	filename := filepath.Join(self.T().TempDir(), "pstotal.prom")
	require.NoError(self.T(), WriteMetricsFile(filename, self.result))

	data := vtesting.ReadFile(self.T(), filename)
	assert.Contains(self.T(), string(data), "pstotal_hidden_processes 5")
}

func TestRenderers(t *testing.T) {
	suite.Run(t, &RendererTestSuite{})
}

func TestTextTable32(t *testing.T) {
	result, err := pstotal.Merge(map[uint64]*processes.ProcessRecord{
		0x2a0: {
			Offset:        0x2a0,
			Name:          "a_very_long_process_name.exe",
			Pid:           1234,
			ParentPid:     4,
			PageTableBase: 0x1000,
		},
	}, nil, sources.NewIdentityAddressSpace(), pstotal.Options{})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	require.NoError(t, RenderText(out, result, Options{AddressBits: 32}))

	// Long values are never truncated.
	expected := "" +
		"Offset(V)  Name                PID   PPID PDB        " +
		"Time created                   Time exited                    Interesting\n" +
		"---------- ---------------- ------ ------ ---------- " +
		"------------------------------ ------------------------------ -----------\n" +
		"0x000002a0 a_very_long_process_name.exe   1234      4 0x00001000 " +
		strings.Repeat(" ", 30) + " " + strings.Repeat(" ", 30) + " True       \n"
	assert.Equal(t, expected, out.String())
}

func TestEmptyResult(t *testing.T) {
	result, err := pstotal.Merge(nil, nil,
		sources.NewIdentityAddressSpace(), pstotal.Options{})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	require.NoError(t, RenderDot(out, result, Options{}))
	assert.Equal(t, "digraph processtree { \ngraph [rankdir = \"TB\"];\n}",
		out.String())

	out.Reset()
	require.NoError(t, RenderJsonl(out, result, Options{}))
	assert.Equal(t, "", out.String())

	families, err := NewMetricsRegistry(result).Gather()
	require.NoError(t, err)
	assert.Equal(t, 0.0, gaugeValues(families)["pstotal_boot_time_seconds"])
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "a", suffix(0))
	assert.Equal(t, "z", suffix(25))
	assert.Equal(t, "aa", suffix(26))
	assert.Equal(t, "ab", suffix(27))
}

func TestTruncateCommand(t *testing.T) {
	assert.Equal(t, `C:\\csrss.exe`+`\n (Run pstree to get command parameters)`,
		truncateCommand(`C:\\csrss.exe ObjectDirectory=\\Windows`))

	// Only a match after the start of the string is cut.
	assert.Equal(t, "conhost.exe 0x4", truncateCommand("conhost.exe 0x4"))
}

func TestParseFormat(t *testing.T) {
	for _, name := range FormatNames() {
		format, err := ParseFormat(name)
		assert.NoError(t, err)
		assert.Equal(t, name, format.String())
	}

	_, err := ParseFormat("html")
	assert.Error(t, err)

	options := OptionsFromConfig(config.GetDefaultConfig())
	assert.Equal(t, 64, options.AddressBits)
}

func nodeLine(t *testing.T, out, id string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, id+" [label=") {
			return line
		}
	}
	t.Fatalf("No node %v in %v", id, out)
	return ""
}

func TestDotFillColors(t *testing.T) {
	boot := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)
	record := func(offset uint64, name string, pid int64,
		created, exited time.Time) *processes.ProcessRecord {
		return &processes.ProcessRecord{
			Offset: offset, Name: name, Pid: pid, ParentPid: 4,
			CreateTime: created, ExitTime: exited,
		}
	}

	system := record(0x1000, "System", 4, boot, time.Time{})
	system.ParentPid = 0
	hidden_exited := record(0x2000, "a.exe", 10,
		boot.Add(time.Hour), boot.Add(2*time.Hour))
	stale := record(0x3000, "b.exe", 11,
		boot.Add(-time.Hour), boot.Add(time.Minute))
	exited := record(0x4000, "c.exe", 12,
		boot.Add(time.Hour), boot.Add(2*time.Hour))

	scan := map[uint64]*processes.ProcessRecord{}
	for _, r := range []*processes.ProcessRecord{
		system, hidden_exited, stale, exited} {
		scan[r.Offset] = r
	}

	result, err := pstotal.Merge(scan,
		[]*processes.ProcessRecord{system, stale, exited},
		sources.NewIdentityAddressSpace(), pstotal.Options{})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	require.NoError(t, RenderDot(out, result, Options{}))

	assert.True(t, strings.HasSuffix(nodeLine(t, out.String(), "pid10"),
		`fillcolor = "red" ];`))
	assert.True(t, strings.HasSuffix(nodeLine(t, out.String(), "pid11"),
		`fillcolor = "darkblue" ];`))
	assert.True(t, strings.HasSuffix(nodeLine(t, out.String(), "pid12"),
		`fillcolor = "lightgray" ];`))

	// Without a boot time the prior boot rules do not apply.
	result.BootTime = time.Time{}
	out.Reset()
	require.NoError(t, RenderDot(out, result, Options{}))
	assert.True(t, strings.HasSuffix(nodeLine(t, out.String(), "pid11"),
		`fillcolor = "lightgray" ];`))
}

func TestDotNameIsSanitized(t *testing.T) {
	result, err := pstotal.Merge(map[uint64]*processes.ProcessRecord{
		0x1000: {Offset: 0x1000, Name: `x"{y}`, Pid: 13, ParentPid: 4},
	}, nil, sources.NewIdentityAddressSpace(), pstotal.Options{})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	require.NoError(t, RenderDot(out, result, Options{}))
	assert.Contains(t, nodeLine(t, out.String(), "pid13"),
		`0x00001000 | xy | created:`)
}

func TestTextIgnoresCmdAndPath(t *testing.T) {
	result := sampleResult(t, pstotal.Options{})

	plain := &bytes.Buffer{}
	require.NoError(t, RenderText(plain, result, Options{AddressBits: 64}))

	with_env := &bytes.Buffer{}
	require.NoError(t, RenderText(with_env, result, Options{
		Cmd: true, Path: true, AddressBits: 64}))

	assert.Equal(t, plain.String(), with_env.String())
}
