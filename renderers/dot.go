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
  Render the merged result as a Graphviz process tree.

  Each process is a record shaped node, linked from its parent pid.
  Fill colors:

  - lightgray: exited in the current boot
  - red: hidden from the process list
  - lightblue: from a prior boot
  - darkblue: from a prior boot but exited after the current boot
    started
*/

package renderers

import (
	"fmt"
	"io"
	"strings"

	"www.velocidex.com/golang/pstotal/constants"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/pstotal"
	"www.velocidex.com/golang/pstotal/utils"
)

const (
	dotHeader = "digraph processtree { \ngraph [rankdir = \"TB\"];\n"
	dotFooter = "}"

	styleExited    = ` style = "filled" fillcolor = "lightgray" `
	styleHidden    = ` style = "filled" fillcolor = "red" `
	stylePriorBoot = ` style = "filled" fillcolor = "lightblue" `
	styleStale     = ` style = "filled" fillcolor = "darkblue" `

	labelRunning   = "running"
	labelPriorBoot = `not available\nprior boot`
)

// Reconstructing the full command line of these processes needs a
// heavier analysis so we cut it short.
var truncatedCommands = []string{"csrss.exe", "conhost.exe"}

func truncateCommand(in string) string {
	for _, name := range truncatedCommands {
		pos := strings.Index(in, name)
		if pos > 0 {
			in = in[:pos+len(name)] + constants.COMMAND_LINE_NOTE
		}
	}
	return in
}

func orNotAvailable(in string) string {
	if in == "" {
		return constants.NOT_AVAILABLE
	}
	return in
}

type dotNode struct {
	label string
	style string
}

func buildNode(result *pstotal.Result,
	entry *pstotal.MergedEntry, options Options) *dotNode {
	record := entry.Record
	epoch := result.Epoch(entry)

	label := fmt.Sprintf(`%d | offset (V)\n0x%08x | %s | `,
		record.Pid, entry.Offset(), pstotal.SanitizeName(record.Name))

	// Environment strings from the list walk belong to the current
	// boot so they are not shown for prior boot blocks.
	if !epoch.IsPriorBoot() {
		if options.Cmd {
			command_line, _ := result.CommandLine(entry.Offset())
			label += fmt.Sprintf(`command:\n%s | `,
				orNotAvailable(truncateCommand(command_line)))
		}

		if options.Path {
			path, _ := result.ImagePath(entry.Offset())
			label += fmt.Sprintf(`path:\n%s | `,
				orNotAvailable(truncateCommand(path)))
		}
	}

	label += fmt.Sprintf(`created:\n%s |`,
		orNotAvailable(processes.FormatTime(record.CreateTime)))

	// Later rules take precedence.
	style := ""
	if record.HasExited() {
		label += fmt.Sprintf(`exited:\n%s`, processes.FormatTime(record.ExitTime))
		style = styleExited
	} else {
		label += labelRunning
	}

	if entry.Hidden {
		style = styleHidden
	}

	switch epoch {
	case pstotal.EpochPriorBoot:
		style = stylePriorBoot
		if !record.HasExited() {
			label = strings.TrimSuffix(label, labelRunning) + labelPriorBoot
		}

	case pstotal.EpochPriorBootStale:
		style = styleStale
	}

	return &dotNode{
		label: "{" + label + "}",
		style: style,
	}
}

// Node ids are derived from the pid. The same process block may be
// found twice in memory (once linked, once only by the scan) so
// repeated pids get a letter suffix to keep both nodes.
type nodeNamer struct {
	seen map[int64]int
}

func (self *nodeNamer) name(pid int64) string {
	count := self.seen[pid]
	self.seen[pid] = count + 1

	if count == 0 {
		return fmt.Sprintf("pid%d", pid)
	}
	return fmt.Sprintf("pid%d%s", pid, suffix(count-1))
}

// a, b, ... z, aa, ab ...
func suffix(n int) string {
	result := ""
	for {
		result = string(rune('a'+n%26)) + result
		n = n/26 - 1
		if n < 0 {
			return result
		}
	}
}

func RenderDot(out io.Writer, result *pstotal.Result, options Options) error {
	var links, objects []string

	namer := &nodeNamer{seen: make(map[int64]int)}
	for _, entry := range result.Entries() {
		record := entry.Record
		node := buildNode(result, entry, options)
		id := namer.name(record.Pid)

		objects = append(objects, fmt.Sprintf(
			"%s [label=\"%s\" shape=\"record\" %s];\n",
			id, node.label, node.style))
		links = append(links, fmt.Sprintf(
			"pid%d -> %s [];\n", record.ParentPid, id))
	}

	_, err := io.WriteString(out, dotHeader)
	if err != nil {
		return err
	}

	for _, line := range utils.Uniquify(links) {
		_, err = io.WriteString(out, line)
		if err != nil {
			return err
		}
	}

	for _, line := range utils.Uniquify(objects) {
		_, err = io.WriteString(out, line)
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(out, dotFooter)
	return err
}
