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

// Process records as resolved by the memory analysis framework. We
// never parse the underlying kernel structures ourselves - the
// framework hands us records which we only read.
package processes

import (
	"time"
)

const (
	// The System process always has this pid on Windows.
	SystemPid = 4
)

// The per process environment block holds strings copied out of the
// process parameters. It is only available for processes reachable
// through the active process list.
type EnvironmentBlock struct {
	CommandLine string `json:"CommandLine,omitempty"`
	ImagePath   string `json:"ImagePath,omitempty"`
}

type ProcessRecord struct {
	// For pool scan records this is the physical offset of the
	// process block. For list walk records it is the virtual
	// address.
	Offset uint64 `json:"Offset"`

	// Some exporters already resolve the physical offset of list
	// records. 0 means unknown.
	PhysicalOffset uint64 `json:"PhysicalOffset,omitempty"`

	// The short image name - not a full path.
	Name string `json:"Name"`

	Pid       int64 `json:"Pid"`
	ParentPid int64 `json:"ParentPid"`

	// Directory table base - only for display.
	PageTableBase uint64 `json:"PageTableBase"`

	// Zero times mean absent. A missing exit time means the process
	// was running at capture time.
	CreateTime time.Time `json:"CreateTime"`
	ExitTime   time.Time `json:"ExitTime"`

	Environment *EnvironmentBlock `json:"Environment,omitempty"`
}

func (self *ProcessRecord) HasCreateTime() bool {
	return !self.CreateTime.IsZero()
}

func (self *ProcessRecord) HasExited() bool {
	return !self.ExitTime.IsZero()
}

func (self *ProcessRecord) Copy() *ProcessRecord {
	result := *self
	if self.Environment != nil {
		env := *self.Environment
		result.Environment = &env
	}
	return &result
}
