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

/*
  Cross reference the pool scan against the active process list.

  The pool scan finds every process block still present in physical
  memory, whether or not it is linked into the process list. The list
  walk only finds processes the kernel still considers active. A
  block found by the scan but not reachable through the list is
  interesting: it may have been unlinked by a rootkit, be a
  terminated process whose memory was not yet reused, or be left over
  from a previous boot (e.g. a hibernation file).
*/

package pstotal

import (
	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/utils"
)

type Options struct {
	// Only report blocks which are missing from the process
	// list. This is the behaviour of the classic psscan diff.
	Short bool
}

// Merge is a pure function of its inputs. Neither the scan map nor
// the list records are modified.
func Merge(
	scan map[uint64]*processes.ProcessRecord,
	list []*processes.ProcessRecord,
	as processes.AddressSpace,
	options Options) (*Result, error) {

	if as == nil {
		return nil, utils.Wrap(utils.InvalidArgError, "Merge: no address space")
	}

	result := newResult()
	for offset, record := range scan {
		if record == nil {
			continue
		}
		result.add(&MergedEntry{
			offset: offset,
			Record: record,
			Hidden: true,
		})
	}

	for _, task := range list {
		if task == nil {
			continue
		}

		phys, err := as.VirtualToPhysical(task.Offset)
		if err != nil {
			return nil, errors.Wrapf(err,
				"Merge: translating %v (pid %v) at %#x",
				task.Name, task.Pid, task.Offset)
		}

		entry, pres := result.Get(phys)
		if pres {
			entry.Hidden = false
		}

		if task.Environment != nil {
			env := *task.Environment
			result.Environments[phys] = &env
			result.CommandLines[phys] = SanitizeCommandLine(
				task.Environment.CommandLine)
			result.ImagePaths[phys] = SanitizePath(
				task.Environment.ImagePath)
		}
	}

	// The boot anchor is usually in the process list so it must be
	// found before short mode filters it away.
	result.BootTime, _ = FindBootTime(result.Entries())

	if options.Short {
		result = result.hiddenOnly()
	}

	result.markDuplicates()

	return result, nil
}
