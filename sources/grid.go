/*
   Velociraptor - Hunting Evil
   Copyright (C) 2019 Velocidex Innovations.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// The framework renders plugin output as a grid of columns and
// rows. The JSON renderer writes {"columns": [...], "rows": [[...]]}
// and the sqlite renderer writes one table per plugin. Both are
// decoded into a Grid here.
package sources

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Velocidex/json"
	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/utils"
)

type Grid struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Column names differ slightly between renderers (e.g. "Offset(P)"
// vs "Offset_P") so compare them normalized.
func normalizeColumn(name string) string {
	result := make([]byte, 0, len(name))
	for _, c := range []byte(strings.ToLower(name)) {
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') {
			result = append(result, c)
		}
	}
	return string(result)
}

var (
	physicalOffsetColumns = []string{"offsetp", "physicaloffset"}
	virtualOffsetColumns  = []string{"offsetv", "virtualoffset", "offset"}
	nameColumns           = []string{"name", "imagefilename"}
	pidColumns            = []string{"pid", "uniqueprocessid"}
	ppidColumns           = []string{"ppid", "inheritedfromuniqueprocessid"}
	pdbColumns            = []string{"pdb", "directorytablebase", "dtb"}
	createColumns         = []string{"timecreated", "start", "createtime"}
	exitColumns           = []string{"timeexited", "exit", "exittime"}
	commandLineColumns    = []string{"commandline", "cmdline"}
	imagePathColumns      = []string{"imagepath", "imagepathname", "path"}
)

type gridRow struct {
	index  map[string]int
	values []interface{}
}

func (self *gridRow) get(names []string) (interface{}, bool) {
	for _, name := range names {
		idx, pres := self.index[name]
		if pres && idx < len(self.values) {
			return self.values[idx], true
		}
	}
	return nil, false
}

func (self *Grid) columnIndex() map[string]int {
	result := make(map[string]int)
	for idx, column := range self.Columns {
		key := normalizeColumn(column)
		if _, pres := result[key]; !pres {
			result[key] = idx
		}
	}
	return result
}

// Records decodes each row into a process record. Scan records are
// keyed by the physical offset, list records by the virtual offset.
func (self *Grid) Records(is_scan bool) ([]*processes.ProcessRecord, error) {
	index := self.columnIndex()
	result := make([]*processes.ProcessRecord, 0, len(self.Rows))

	for row_idx, values := range self.Rows {
		row := &gridRow{index: index, values: values}
		record, err := decodeRecord(row, is_scan)
		if err != nil {
			return nil, errors.Wrapf(err, "row %v", row_idx)
		}
		result = append(result, record)
	}

	return result, nil
}

func decodeRecord(row *gridRow, is_scan bool) (*processes.ProcessRecord, error) {
	record := &processes.ProcessRecord{}

	physical, has_physical := row.get(physicalOffsetColumns)
	virtual, has_virtual := row.get(virtualOffsetColumns)

	var err error
	if has_physical {
		record.PhysicalOffset, err = toUint64(physical)
		if err != nil {
			return nil, errors.Wrap(err, "physical offset")
		}
	}

	switch {
	case is_scan && has_physical:
		record.Offset = record.PhysicalOffset

	case has_virtual:
		record.Offset, err = toUint64(virtual)
		if err != nil {
			return nil, errors.Wrap(err, "offset")
		}

	case has_physical:
		record.Offset = record.PhysicalOffset

	default:
		return nil, utils.Wrap(utils.InvalidArgError, "no offset column")
	}

	name, _ := row.get(nameColumns)
	record.Name = toString(name)

	pid, _ := row.get(pidColumns)
	record.Pid, err = toInt64(pid)
	if err != nil {
		return nil, errors.Wrap(err, "pid")
	}

	ppid, _ := row.get(ppidColumns)
	record.ParentPid, err = toInt64(ppid)
	if err != nil {
		return nil, errors.Wrap(err, "ppid")
	}

	pdb, _ := row.get(pdbColumns)
	record.PageTableBase, err = toUint64(pdb)
	if err != nil {
		return nil, errors.Wrap(err, "pdb")
	}

	create, _ := row.get(createColumns)
	record.CreateTime, err = toTime(create)
	if err != nil {
		return nil, errors.Wrap(err, "create time")
	}

	exit, _ := row.get(exitColumns)
	record.ExitTime, err = toTime(exit)
	if err != nil {
		return nil, errors.Wrap(err, "exit time")
	}

	command_line, has_command_line := row.get(commandLineColumns)
	image_path, has_image_path := row.get(imagePathColumns)
	if !is_scan && (has_command_line || has_image_path) &&
		(command_line != nil || image_path != nil) {
		record.Environment = &processes.EnvironmentBlock{
			CommandLine: toString(command_line),
			ImagePath:   toString(image_path),
		}
	}

	return record, nil
}

func toString(value interface{}) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func toUint64(value interface{}) (uint64, error) {
	switch t := value.(type) {
	case nil:
		return 0, nil
	case json.Number:
		return strconv.ParseUint(string(t), 0, 64)
	case int64:
		return uint64(t), nil
	case int:
		return uint64(t), nil
	case uint64:
		return t, nil
	case float64:
		return uint64(t), nil
	case string, []byte:
		s := strings.TrimSpace(toString(t))
		if s == "" || s == "-" {
			return 0, nil
		}
		return strconv.ParseUint(s, 0, 64)
	default:
		return 0, utils.Wrap(utils.InvalidArgError,
			"unexpected type %T for address", value)
	}
}

func toInt64(value interface{}) (int64, error) {
	switch t := value.(type) {
	case nil:
		return 0, nil
	case json.Number:
		return strconv.ParseInt(string(t), 0, 64)
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case string, []byte:
		s := strings.TrimSpace(toString(t))
		if s == "" || s == "-" {
			return 0, nil
		}
		return strconv.ParseInt(s, 0, 64)
	default:
		return 0, utils.Wrap(utils.InvalidArgError,
			"unexpected type %T for integer", value)
	}
}

// Timestamps are normally in the framework's own format. Anything
// else is handed to dateparse.
func toTime(value interface{}) (time.Time, error) {
	switch t := value.(type) {
	case nil:
		return time.Time{}, nil

	case time.Time:
		return t.UTC(), nil

	case string, []byte:
		s := strings.TrimSpace(toString(t))
		if s == "" || s == "-" {
			return time.Time{}, nil
		}

		ts, err := processes.ParseTime(s)
		if err == nil {
			return ts, nil
		}

		ts, err = dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "parsing %q", s)
		}
		return ts.UTC(), nil

	default:
		return time.Time{}, utils.Wrap(utils.InvalidArgError,
			"unexpected type %T for timestamp", value)
	}
}
